package fits

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/taracrutchfield/Messier-67-Lab/internal/grid"
)

// Image is a decoded primary HDU: header cards plus the pixel grid.
// NAXIS1 maps to columns and NAXIS2 to rows.
type Image struct {
	Header Header
	Data   *grid.Grid
}

// ReadFile decodes the primary HDU of the FITS file at path.
func ReadFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Read decodes a primary HDU from r.
func Read(r io.Reader) (*Image, error) {
	header, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	if v, ok := header.Get("SIMPLE"); !ok || v != "T" {
		return nil, fmt.Errorf("fits: not a standard FITS file (SIMPLE=%q)", v)
	}
	bitpix, err := header.Int("BITPIX")
	if err != nil {
		return nil, err
	}
	naxis, err := header.Int("NAXIS")
	if err != nil {
		return nil, err
	}
	if naxis != 2 {
		return nil, fmt.Errorf("fits: expected 2D image, got NAXIS=%d", naxis)
	}
	cols, err := header.Int("NAXIS1")
	if err != nil {
		return nil, err
	}
	rows, err := header.Int("NAXIS2")
	if err != nil {
		return nil, err
	}
	bzero, err := header.FloatOr("BZERO", 0)
	if err != nil {
		return nil, err
	}
	bscale, err := header.FloatOr("BSCALE", 1)
	if err != nil {
		return nil, err
	}

	data, err := readData(r, bitpix, rows, cols, bzero, bscale)
	if err != nil {
		return nil, err
	}
	return &Image{Header: header, Data: data}, nil
}

// readHeader consumes 2880-byte blocks until the END card.
func readHeader(r io.Reader) (Header, error) {
	var header Header
	block := make([]byte, blockSize)
	for {
		if _, err := io.ReadFull(r, block); err != nil {
			return header, fmt.Errorf("fits: read header: %w", err)
		}
		for off := 0; off < blockSize; off += cardSize {
			card := block[off : off+cardSize]
			keyword := strings.TrimRight(string(card[:8]), " ")
			if keyword == "END" {
				return header, nil
			}
			if keyword == "" || keyword == "COMMENT" || keyword == "HISTORY" {
				continue
			}
			if string(card[8:10]) != "= " {
				continue
			}
			value, comment := splitValue(string(card[10:]))
			header.Append(Card{Keyword: keyword, Value: value, Comment: comment})
		}
	}
}

// splitValue separates a card's value field from its comment. A slash inside
// a quoted string value does not start a comment.
func splitValue(field string) (value, comment string) {
	trimmed := strings.TrimSpace(field)
	if strings.HasPrefix(trimmed, "'") {
		if end := strings.Index(trimmed[1:], "'"); end >= 0 {
			value = strings.TrimRight(trimmed[1:1+end], " ")
			rest := trimmed[end+2:]
			if i := strings.Index(rest, "/"); i >= 0 {
				comment = strings.TrimSpace(rest[i+1:])
			}
			return value, comment
		}
	}
	if i := strings.Index(trimmed, "/"); i >= 0 {
		return strings.TrimSpace(trimmed[:i]), strings.TrimSpace(trimmed[i+1:])
	}
	return trimmed, ""
}

// readData decodes the big-endian data array that follows the header.
func readData(r io.Reader, bitpix, rows, cols int, bzero, bscale float64) (*grid.Grid, error) {
	size := bitpix
	if size < 0 {
		size = -size
	}
	size /= 8
	switch bitpix {
	case 8, 16, 32, -32, -64:
	default:
		return nil, fmt.Errorf("fits: unsupported BITPIX %d", bitpix)
	}

	n := rows * cols
	raw := make([]byte, n*size)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("fits: read data: %w", err)
	}

	g, err := grid.New(rows, cols)
	if err != nil {
		return nil, fmt.Errorf("fits: %w", err)
	}
	for i := 0; i < n; i++ {
		var v float64
		switch bitpix {
		case 8:
			v = float64(raw[i])
		case 16:
			v = float64(int16(binary.BigEndian.Uint16(raw[i*2:])))
		case 32:
			v = float64(int32(binary.BigEndian.Uint32(raw[i*4:])))
		case -32:
			v = float64(math.Float32frombits(binary.BigEndian.Uint32(raw[i*4:])))
		case -64:
			v = math.Float64frombits(binary.BigEndian.Uint64(raw[i*8:]))
		}
		g.Pix[i] = bzero + bscale*v
	}
	return g, nil
}
