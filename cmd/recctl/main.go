// Command recctl generates, inspects and benchmarks record data files.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/fulldump/goconfig"
)

type Config struct {
	Mode string `usage:"GEN | INSPECT | DUMP | BENCH"`
	File string `usage:"data file path, or blob name for remote stores"`

	Store    string `usage:"LOCAL | S3 | MINIO"`
	Bucket   string `usage:"bucket of remote stores"`
	Prefix   string `usage:"key prefix of remote stores"`
	Endpoint string `usage:"endpoint of remote stores"`
	Region   string `usage:"S3 region"`

	AccessKey string `usage:"MinIO access key"`
	SecretKey string `usage:"MinIO secret key"`
	Secure    bool   `usage:"use TLS for MinIO"`

	Position    int64  `usage:"offset of the region header"`
	ElementSize uint32 `usage:"record size, 0 for length-prefixed records"`
	Counted     bool   `usage:"header word is the record count instead of the byte length"`

	Capacity    uint32 `usage:"cache entries, 0 disables the cache"`
	Concurrency uint32 `usage:"file stripes and cache shards"`
	Loaded      bool   `usage:"load the region into memory"`
	Mmap        bool   `usage:"memory-map local files"`

	N       int     `usage:"records to generate (GEN) or gets to run (BENCH)"`
	Workers int     `usage:"concurrent readers (BENCH)"`
	Zipf    float64 `usage:"zipf exponent of the BENCH access pattern, 0 for uniform"`
	Limit   int     `usage:"records to print (DUMP)"`
	Seed    int64   `usage:"random seed"`

	LogLevel string `usage:"DEBUG | INFO | WARN | ERROR"`
}

func defaultConfig() Config {
	return Config{
		Mode:        "inspect",
		File:        "records.dat",
		Store:       "local",
		ElementSize: 16,
		Counted:     true,
		Concurrency: 4,
		N:           100_000,
		Workers:     8,
		Limit:       10,
		Seed:        1,
		LogLevel:    "warn",
	}
}

func main() {
	c := defaultConfig()
	goconfig.Read(&c)

	if err := run(context.Background(), c, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, c Config, w io.Writer) error {
	switch strings.ToUpper(c.Mode) {
	case "GEN":
		return gen(ctx, c, w)
	case "INSPECT":
		return inspect(ctx, c, w)
	case "DUMP":
		return dump(ctx, c, w)
	case "BENCH":
		return bench(ctx, c, w)
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
}

func logLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelWarn
	}
	return l
}
