package results

import (
	"bytes"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
)

// SerializeToIPC serializes an Arrow Record to IPC stream bytes.
func SerializeToIPC(record arrow.Record) ([]byte, error) {
	var buf bytes.Buffer

	writer := ipc.NewWriter(&buf, ipc.WithSchema(record.Schema()))
	defer writer.Close()

	if err := writer.Write(record); err != nil {
		return nil, fmt.Errorf("failed to write record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}

	return buf.Bytes(), nil
}

// DeserializeFromIPC reads the first Arrow Record from IPC stream bytes.
// The caller owns the returned record and must Release it.
func DeserializeFromIPC(data []byte) (arrow.Record, error) {
	reader, err := ipc.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create reader: %w", err)
	}
	defer reader.Release()

	if !reader.Next() {
		if reader.Err() != nil {
			return nil, reader.Err()
		}
		return nil, fmt.Errorf("no records in IPC data")
	}

	record := reader.Record()
	record.Retain()

	return record, nil
}
