// Package definition reads and writes the province definition table.
//
// The table is semicolon separated with a header line:
//
//	province;red;green;blue;name;x
//	1;187;12;90;Province_1;x
//	2;44;101;203;Sea_2;
//
// The last column flags land provinces with "x" and is empty for water.
package definition

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/maax3v3/provgen/internal/color"
	"github.com/maax3v3/provgen/internal/province"
)

// Header is the first line of every table.
var Header = []string{"province", "red", "green", "blue", "name", "x"}

const landFlag = "x"

// Row is one parsed table line.
type Row struct {
	ID    int32
	Color color.RGB
	Name  string
	Land  bool
}

// Write emits the header and one row per record, in record order.
func Write(w io.Writer, recs []province.Record) error {
	cw := newWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	line := make([]string, len(Header))
	for _, r := range recs {
		line[0] = strconv.Itoa(int(r.ID))
		line[1] = strconv.Itoa(int(r.Color.R))
		line[2] = strconv.Itoa(int(r.Color.G))
		line[3] = strconv.Itoa(int(r.Color.B))
		line[4] = r.Name
		line[5] = ""
		if !r.Water {
			line[5] = landFlag
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("writing province %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func newWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	return cw
}

// Read parses a table written by Write.
func Read(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = len(Header)
	cr.ReuseRecord = true

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("definition: empty table")
	}
	if err != nil {
		return nil, fmt.Errorf("definition: reading header: %w", err)
	}
	for i, h := range Header {
		if head[i] != h {
			return nil, fmt.Errorf("definition: header column %d is %q, want %q", i+1, head[i], h)
		}
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("definition: %w", err)
		}
		row, err := parseRow(rec)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("definition: line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
}

func parseRow(rec []string) (Row, error) {
	id, err := strconv.ParseInt(rec[0], 10, 32)
	if err != nil || id <= 0 {
		return Row{}, fmt.Errorf("bad province id %q", rec[0])
	}
	var ch [3]uint8
	for i := range ch {
		v, err := strconv.ParseUint(rec[1+i], 10, 8)
		if err != nil {
			return Row{}, fmt.Errorf("bad %s value %q", Header[1+i], rec[1+i])
		}
		ch[i] = uint8(v)
	}
	switch rec[5] {
	case landFlag, "":
	default:
		return Row{}, fmt.Errorf("bad land flag %q", rec[5])
	}
	return Row{
		ID:    int32(id),
		Color: color.RGB{R: ch[0], G: ch[1], B: ch[2]},
		Name:  rec[4],
		Land:  rec[5] == landFlag,
	}, nil
}
