package imagescan

import (
	"bytes"
	"encoding/binary"
)

// Dimensions extracts the pixel width and height of an image from its
// header bytes. It supports PNG, baseline/progressive JPEG, GIF, and
// simple (VP8) WebP. It returns ok=false when the format is unrecognized
// or the header is truncated; callers should treat that as "size unknown"
// rather than as a rejection, since the detector can still judge the file.
func Dimensions(data []byte) (width, height int, ok bool) {
	if len(data) < 24 {
		return 0, 0, false
	}

	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return pngDimensions(data)
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return jpegDimensions(data)
	case bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a")):
		return gifDimensions(data)
	case bytes.HasPrefix(data, []byte("RIFF")) && len(data) > 30 && bytes.Equal(data[8:12], []byte("WEBP")):
		return webpDimensions(data)
	default:
		return 0, 0, false
	}
}

// pngDimensions reads the IHDR chunk, which is always first: width and
// height are big-endian uint32s at offsets 16 and 20.
func pngDimensions(data []byte) (int, int, bool) {
	w := binary.BigEndian.Uint32(data[16:20])
	h := binary.BigEndian.Uint32(data[20:24])
	return int(w), int(h), true
}

// jpegDimensions walks the segment stream looking for a start-of-frame
// marker (SOF0 through SOF3), which carries the frame height and width as
// big-endian uint16s.
func jpegDimensions(data []byte) (int, int, bool) {
	i := 2
	for i+9 < len(data) {
		if data[i] != 0xFF {
			i++
			continue
		}
		marker := data[i+1]
		if marker >= 0xC0 && marker <= 0xC3 {
			h := binary.BigEndian.Uint16(data[i+5 : i+7])
			w := binary.BigEndian.Uint16(data[i+7 : i+9])
			return int(w), int(h), true
		}
		if i+3 >= len(data) {
			break
		}
		segLen := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		i += 2 + segLen
	}
	return 0, 0, false
}

// gifDimensions reads the logical screen descriptor: width and height are
// little-endian uint16s at offsets 6 and 8.
func gifDimensions(data []byte) (int, int, bool) {
	w := binary.LittleEndian.Uint16(data[6:8])
	h := binary.LittleEndian.Uint16(data[8:10])
	return int(w), int(h), true
}

// webpDimensions handles the simple "VP8 " chunk layout: width and height
// are 14-bit little-endian values at offsets 26 and 28. Lossless (VP8L)
// and extended (VP8X) containers are not parsed.
func webpDimensions(data []byte) (int, int, bool) {
	if !bytes.Equal(data[12:16], []byte("VP8 ")) || len(data) < 30 {
		return 0, 0, false
	}
	w := binary.LittleEndian.Uint16(data[26:28]) & 0x3FFF
	h := binary.LittleEndian.Uint16(data[28:30]) & 0x3FFF
	return int(w), int(h), true
}
