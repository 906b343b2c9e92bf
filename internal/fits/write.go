package fits

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/taracrutchfield/Messier-67-Lab/internal/grid"
)

// WriteFile encodes data as a 64-bit float primary HDU at path, appending
// the extra cards after the mandatory ones.
func WriteFile(path string, data *grid.Grid, extra ...Card) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, data, extra...); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// Write encodes data as a 64-bit float primary HDU.
func Write(w io.Writer, data *grid.Grid, extra ...Card) error {
	cards := []Card{
		Logical("SIMPLE", true),
		IntCard("BITPIX", -64),
		IntCard("NAXIS", 2),
		IntCard("NAXIS1", data.Cols),
		IntCard("NAXIS2", data.Rows),
	}
	cards = append(cards, extra...)

	if err := writeHeader(w, cards); err != nil {
		return err
	}
	return writeData(w, data)
}

func writeHeader(w io.Writer, cards []Card) error {
	var buf []byte
	for _, c := range cards {
		buf = append(buf, formatCard(c)...)
	}
	end := make([]byte, cardSize)
	copy(end, "END")
	for i := 3; i < cardSize; i++ {
		end[i] = ' '
	}
	buf = append(buf, end...)
	buf = pad(buf, ' ')
	_, err := w.Write(buf)
	return err
}

// formatCard renders one 80-byte header record in fixed format: the keyword
// left-justified in columns 1-8, "= ", and the value right-justified to
// column 30.
func formatCard(c Card) []byte {
	card := make([]byte, cardSize)
	for i := range card {
		card[i] = ' '
	}
	copy(card, c.Keyword)
	copy(card[8:], "= ")
	value := c.Value
	if len(value) < 20 {
		value = fmt.Sprintf("%20s", value)
	}
	copy(card[10:], value)
	if c.Comment != "" {
		rest := fmt.Sprintf(" / %s", c.Comment)
		if 10+len(value)+len(rest) > cardSize {
			rest = rest[:cardSize-10-len(value)]
		}
		copy(card[10+len(value):], rest)
	}
	return card
}

func writeData(w io.Writer, data *grid.Grid) error {
	buf := make([]byte, 0, len(data.Pix)*8)
	var scratch [8]byte
	for _, v := range data.Pix {
		binary.BigEndian.PutUint64(scratch[:], math.Float64bits(v))
		buf = append(buf, scratch[:]...)
	}
	buf = pad(buf, 0)
	_, err := w.Write(buf)
	return err
}

// pad extends buf with fill bytes to a whole number of 2880-byte blocks.
func pad(buf []byte, fill byte) []byte {
	rem := len(buf) % blockSize
	if rem == 0 {
		return buf
	}
	for i := rem; i < blockSize; i++ {
		buf = append(buf, fill)
	}
	return buf
}
