package serename

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestLenString_RoundTripBothOrders(t *testing.T) {
	t.Parallel()

	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		var buf bytes.Buffer
		for _, s := range []string{"", "a", "Content/Old.tex"} {
			if err := writeLenString(&buf, order, s); err != nil {
				t.Fatalf("writeLenString(%q): %v", s, err)
			}
		}

		r := bytes.NewReader(buf.Bytes())
		for _, want := range []string{"", "a", "Content/Old.tex"} {
			got, err := readLenString(r, order)
			if err != nil {
				t.Fatalf("readLenString: %v", err)
			}
			if got != want {
				t.Errorf("%v: got %q, want %q", order, got, want)
			}
		}
	}
}

func TestReadLenString_NegativeLengthIsEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := writeInt32(&buf, binary.LittleEndian, -5); err != nil {
		t.Fatalf("writeInt32: %v", err)
	}

	got, err := readLenString(bytes.NewReader(buf.Bytes()), binary.LittleEndian)
	if err != nil {
		t.Fatalf("readLenString: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestPeekBytes_DoesNotAdvance(t *testing.T) {
	t.Parallel()

	r := bytes.NewReader([]byte("SIGSTRM1payload"))
	head, err := peekBytes(r, 8)
	if err != nil {
		t.Fatalf("peekBytes: %v", err)
	}
	if string(head) != "SIGSTRM1" {
		t.Fatalf("head=%q", head)
	}

	pos, _ := r.Seek(0, 1)
	if pos != 0 {
		t.Fatalf("stream advanced to %d", pos)
	}

	// A short stream returns what it has.
	short := bytes.NewReader([]byte("abc"))
	head, err = peekBytes(short, 8)
	if err != nil {
		t.Fatalf("peekBytes short: %v", err)
	}
	if string(head) != "abc" {
		t.Fatalf("short head=%q", head)
	}
}

func TestReadUint32_Truncated(t *testing.T) {
	t.Parallel()

	_, err := readUint32(bytes.NewReader([]byte{1, 2}), binary.LittleEndian)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("got %v, want ErrTruncated", err)
	}
}
