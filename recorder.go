package lolgpio

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/pkg/errors"

	"github.com/hubertat/lolgpio/bridge"
)

const defaultMeasurement = "gpio"
const recorderWriteTimeout = 3 * time.Second

// Recorder writes every pin level change to InfluxDB as one point:
// measurement Measurement, tags pin and name, integer field level.
type Recorder struct {
	Host         string
	Organization string
	Bucket       string
	Measurement  string
	Token        string

	client   influxdb2.Client
	writeApi api.WriteAPIBlocking
	logger   *log.Logger
}

func (rec *Recorder) Open() error {
	if len(rec.Host) == 0 || len(rec.Bucket) == 0 {
		return errors.New("influx recorder needs Host and Bucket")
	}
	if len(rec.Measurement) == 0 {
		rec.Measurement = defaultMeasurement
	}

	rec.client = influxdb2.NewClient(rec.Host, rec.Token)
	rec.writeApi = rec.client.WriteAPIBlocking(rec.Organization, rec.Bucket)
	rec.logger = log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "influx",
		Level:  log.GetLevel(),
	})
	return nil
}

func (rec *Recorder) Record(ctx context.Context, pin uint16, level bool, at time.Time) error {
	if rec.writeApi == nil {
		return errors.New("influx recorder not opened")
	}

	value := 0
	if level {
		value = 1
	}

	point := influxdb2.NewPoint(
		rec.Measurement,
		map[string]string{
			"pin":  strconv.Itoa(int(pin)),
			"name": bridge.AttributeName(pin),
		},
		map[string]interface{}{"level": value},
		at,
	)

	return errors.Wrapf(rec.writeApi.WritePoint(ctx, point), "failed to record pin %d", pin)
}

func (rec *Recorder) LevelChanged(pin uint16, level bool) {
	ctx, cancel := context.WithTimeout(context.Background(), recorderWriteTimeout)
	defer cancel()

	if err := rec.Record(ctx, pin, level, time.Now()); err != nil {
		rec.logger.Error("failed to write point", "err", err)
	}
}

func (rec *Recorder) Close() {
	if rec.client != nil {
		rec.client.Close()
	}
}
