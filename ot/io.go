//
// io.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.

package ot

// IO defines an I/O interface to communicate between peers.
type IO interface {
	// WriteData sends length-prefixed binary data.
	WriteData(val []byte) error

	// WriteBlock sends a 128-bit block.
	WriteBlock(val Label) error

	// Flush flushed any pending data in the connection.
	Flush() error

	// ReadData receives length-prefixed binary data.
	ReadData() ([]byte, error)

	// ReadBlock receives a 128-bit block.
	ReadBlock() (Label, error)
}

// SendString sends a string value.
func SendString(io IO, str string) error {
	return io.WriteData([]byte(str))
}

// ReceiveString receives a string value.
func ReceiveString(io IO) (string, error) {
	data, err := io.ReadData()
	if err != nil {
		return "", err
	}
	return string(data), nil
}
