package main

import (
	"bufio"
	"io"
)

const (
	SOF0             = 0xAA
	SOF1             = 0x55
	CmdSensorReading = 0x20
	ReadingPayload   = 2 // big-endian 10-bit conversion value
)

// FrameReader decodes the sensor MCU's reading stream. The MCU emits one
// frame per ADC conversion:
//
//	[SOF0][SOF1][LEN][CMD][hi][lo][CKS]
//
// where LEN counts CMD plus payload and CKS is the XOR of LEN, CMD and the
// payload bytes. The reader scans forward for the SOF pair, so it recovers
// from partial frames and line garbage on its own.
type FrameReader struct {
	r *bufio.Reader
}

func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: bufio.NewReader(r)}
}

// Next returns the value of the next valid reading frame. Corrupt frames
// (bad length, bad command, checksum mismatch, value outside the ADC range)
// are skipped with a warning. The only errors returned are the underlying
// reader's.
func (fr *FrameReader) Next() (int, error) {
	for {
		if err := fr.sync(); err != nil {
			return 0, err
		}

		hdr := make([]byte, 2) // LEN, CMD
		if _, err := io.ReadFull(fr.r, hdr); err != nil {
			return 0, err
		}
		length, cmd := hdr[0], hdr[1]
		if length != ReadingPayload+1 || cmd != CmdSensorReading {
			logger.Warn("frame: unexpected header, resyncing", "len", length, "cmd", cmd)
			continue
		}

		body := make([]byte, ReadingPayload+1) // hi, lo, CKS
		if _, err := io.ReadFull(fr.r, body); err != nil {
			return 0, err
		}
		cks := length ^ cmd ^ body[0] ^ body[1]
		if cks != body[2] {
			logger.Warn("frame: checksum mismatch, dropping frame", "want", body[2], "got", cks)
			continue
		}

		value := int(body[0])<<8 | int(body[1])
		if value > SENSOR_MAX {
			logger.Warn("frame: value outside ADC range, dropping frame", "value", value)
			continue
		}
		return value, nil
	}
}

// sync consumes bytes until an SOF0 SOF1 pair has been read.
func (fr *FrameReader) sync() error {
	for {
		b, err := fr.r.ReadByte()
		if err != nil {
			return err
		}
		if b != SOF0 {
			continue
		}
		b, err = fr.r.ReadByte()
		if err != nil {
			return err
		}
		if b == SOF1 {
			return nil
		}
		if b == SOF0 {
			// could be the start of a real SOF pair
			if err := fr.r.UnreadByte(); err != nil {
				return err
			}
		}
	}
}

// EncodeReading builds the on-wire form of one reading frame. The firmware
// owns the real encoder; this one exists for the simulator and tests.
func EncodeReading(value int) []byte {
	hi := byte(value >> 8)
	lo := byte(value)
	length := byte(ReadingPayload + 1)
	cks := length ^ CmdSensorReading ^ hi ^ lo
	return []byte{SOF0, SOF1, length, CmdSensorReading, hi, lo, cks}
}
