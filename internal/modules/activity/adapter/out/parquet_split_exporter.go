package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"dailymile/internal/modules/activity/domain"
	activityout "dailymile/internal/modules/activity/port/out"
)

type splitParquetRow struct {
	ActivityID         string  `parquet:"name=activity_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	StartedAtUTC       string  `parquet:"name=started_at_utc, type=BYTE_ARRAY, convertedtype=UTF8"`
	Sport              string  `parquet:"name=sport, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	SplitIndex         int32   `parquet:"name=split_index, type=INT32"`
	DistanceMiles      float64 `parquet:"name=distance_miles, type=DOUBLE"`
	DurationSeconds    float64 `parquet:"name=duration_seconds, type=DOUBLE"`
	PaceSecondsPerMile float64 `parquet:"name=pace_seconds_per_mile, type=DOUBLE"`
	Partial            bool    `parquet:"name=partial, type=BOOLEAN"`
}

// ParquetSplitExporter writes one row per split for personal-record tooling.
type ParquetSplitExporter struct{}

func NewParquetSplitExporter() activityout.SplitExporter {
	return ParquetSplitExporter{}
}

func (ParquetSplitExporter) Export(_ context.Context, path string, activity domain.Activity) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parquet dir: %w", err)
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("open parquet file: %w", err)
	}
	pw, err := writer.NewParquetWriter(fw, new(splitParquetRow), 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	started := activity.StartedAt.UTC().Format("2006-01-02T15:04:05Z")
	for _, split := range activity.Splits {
		row := splitParquetRow{
			ActivityID:         activity.ID,
			StartedAtUTC:       started,
			Sport:              activity.Sport,
			SplitIndex:         int32(split.Index),
			DistanceMiles:      split.DistanceMiles,
			DurationSeconds:    split.DurationSeconds,
			PaceSecondsPerMile: split.PaceSecondsPerMile,
			Partial:            split.Partial(),
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return fmt.Errorf("write parquet row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return fmt.Errorf("finish parquet file: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("close parquet file: %w", err)
	}
	return nil
}
