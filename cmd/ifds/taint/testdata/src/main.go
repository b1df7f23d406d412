package main

func source() string {
	return "secret"
}

func sink(s string) {
	println(s)
}

func sanitize(s string) string {
	return "clean"
}

func main() {
	x := source()
	y := x + "!"
	sink(y)
	sink(sanitize(source()))
}
