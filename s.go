package nativewebp
import ("image";"io")
type Options struct{ UseExtendedFormat bool }
func Encode(w io.Writer, img image.Image, o *Options) error { return nil }
