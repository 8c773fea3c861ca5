package consumer

// placeholderThumbnail is a minimal lossless webp (a single pixel).
// No rasterizer is wired in, so every consumed document gets this
// placeholder and the thumbnail endpoint always has something to serve.
var placeholderThumbnail = []byte{
	0x52, 0x49, 0x46, 0x46, 0x1a, 0x00, 0x00, 0x00, // RIFF, size 26
	0x57, 0x45, 0x42, 0x50, 0x56, 0x50, 0x38, 0x4c, // WEBP, VP8L
	0x0d, 0x00, 0x00, 0x00, 0x2f, 0x00, 0x00, 0x00,
	0x10, 0x07, 0x10, 0x11, 0x11, 0x88, 0x88, 0xfe,
	0x07, 0x00,
}
