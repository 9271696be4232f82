package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/timetable/core/metrics"
	"github.com/kilianp07/timetable/infra/logger"
)

// InfluxSink writes import events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordImportResult writes the import result as a line protocol event.
func (s *InfluxSink) RecordImportResult(res coremetrics.ImportResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("import_event").
		AddTag("import_id", res.ID).
		AddTag("mode", res.Mode).
		AddTag("success", strconv.FormatBool(res.Success)).
		AddTag("component", "importer")
	if res.UsedModel != "" {
		p = p.AddTag("model", res.UsedModel)
	}
	if res.FailureCategory != "" {
		p = p.AddTag("failure_category", res.FailureCategory)
	}
	p = p.AddField("attempts", res.Attempts).
		AddField("days", res.Days).
		AddField("periods", res.Periods).
		AddField("entries", res.Entries).
		AddField("duration_ms", res.Duration.Milliseconds())
	if res.RepairStrategy != "" {
		p = p.AddField("repair_strategy", res.RepairStrategy)
	}
	p = p.SetTime(res.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordAttempt persists one generation attempt.
func (s *InfluxSink) RecordAttempt(rec coremetrics.AttemptRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("import_attempt").
		AddTag("import_id", rec.ImportID).
		AddTag("model", rec.Model).
		AddTag("component", "importer").
		AddField("outcome", rec.Outcome).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}
