package saver

import (
	"github.com/parquet-go/parquet-go"
)

// ParquetCodec stores bars as a Parquet file.
type ParquetCodec struct{}

func (ParquetCodec) Extension() string { return "parquet" }

func (ParquetCodec) Save(bars []Bar, path string) error {
	return parquet.WriteFile(path, bars)
}

func (ParquetCodec) Load(path string) ([]Bar, error) {
	return parquet.ReadFile[Bar](path)
}
