package jclass

func Fuzz(data []byte) int {
	f, err := NewBytes(data, DefaultOptions())
	if err != nil {
		return 0
	}
	if err := f.Parse(); err != nil {
		return 0
	}
	return 1
}
