package service

import (
	"bytes"
	"fmt"
	"image/gif"
	"image/jpeg"
	"image/png"
	"mime"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// jpegQuality 用于重编码 JPEG。
const jpegQuality = 92

// imageFormat 把内容类型映射为净化管线识别的格式名，非图片返回空串。
func imageFormat(contentType string) string {
	parsed, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	if !strings.HasPrefix(parsed, "image/") {
		return ""
	}

	switch parsed {
	case "image/jpeg", "image/jpg":
		return "jpeg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/tiff":
		return "tiff"
	case "image/bmp", "image/x-ms-bmp":
		return "bmp"
	default:
		// image/webp 等：能识别是图片，但没有可用编码器
		return strings.TrimPrefix(parsed, "image/")
	}
}

// stripImageMetadata 通过解码再重编码剥离嵌入的 EXIF/GPS/相机元数据，
// 像素数据保持不变。不支持重编码的格式返回错误，调用方按原始字节回退。
func stripImageMetadata(data []byte, format string) ([]byte, error) {
	reader := bytes.NewReader(data)
	var out bytes.Buffer

	switch format {
	case "jpeg":
		img, err := jpeg.Decode(reader)
		if err != nil {
			return nil, fmt.Errorf("decode jpeg: %w", err)
		}
		if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	case "png":
		img, err := png.Decode(reader)
		if err != nil {
			return nil, fmt.Errorf("decode png: %w", err)
		}
		if err := png.Encode(&out, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	case "gif":
		// DecodeAll 保留动画帧
		img, err := gif.DecodeAll(reader)
		if err != nil {
			return nil, fmt.Errorf("decode gif: %w", err)
		}
		if err := gif.EncodeAll(&out, img); err != nil {
			return nil, fmt.Errorf("encode gif: %w", err)
		}
	case "tiff":
		img, err := tiff.Decode(reader)
		if err != nil {
			return nil, fmt.Errorf("decode tiff: %w", err)
		}
		if err := tiff.Encode(&out, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
			return nil, fmt.Errorf("encode tiff: %w", err)
		}
	case "bmp":
		img, err := bmp.Decode(reader)
		if err != nil {
			return nil, fmt.Errorf("decode bmp: %w", err)
		}
		if err := bmp.Encode(&out, img); err != nil {
			return nil, fmt.Errorf("encode bmp: %w", err)
		}
	default:
		return nil, fmt.Errorf("no encoder for image format %q", format)
	}

	return out.Bytes(), nil
}
