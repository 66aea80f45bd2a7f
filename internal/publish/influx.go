package publish

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"gnsslog/internal/parser"
)

type InfluxConfig struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
}

type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// InfluxSink writes one point per epoch. Epoch times are relative, so points
// are laid out from the moment of publishing.
type InfluxSink struct {
	cfg    InfluxConfig
	client influxdb2.Client
	w      pointWriter
	now    func() time.Time
}

func NewInflux(cfg InfluxConfig) *InfluxSink {
	if cfg.Measurement == "" {
		cfg.Measurement = "gnss_epoch"
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &InfluxSink{
		cfg:    cfg,
		client: client,
		w:      client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		now:    time.Now,
	}
}

func (s *InfluxSink) Publish(ctx context.Context, id string, res parser.Result) error {
	if len(res.Epochs) == 0 {
		return nil
	}
	points := epochPoints(s.cfg.Measurement, id, s.now().UTC(), res.Epochs)
	if err := s.w.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("influx: write %d points: %w", len(points), err)
	}
	return nil
}

func (s *InfluxSink) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}

func epochPoints(measurement, id string, base time.Time, epochs []parser.Epoch) []*write.Point {
	points := make([]*write.Point, 0, len(epochs))
	for _, e := range epochs {
		fields := map[string]interface{}{
			"fix_quality":     e.FixQuality,
			"fix_type":        e.FixType,
			"fix_valid":       e.FixValid,
			"sats_used":       e.SatsUsed,
			"sats_tracked":    e.SatsTracked,
			"cn0_avg":         e.CN0Avg,
			"cn0_top3":        e.CN0Top3,
			"cn0_max":         e.CN0Max,
			"ubx_cn0":         e.UBXCN0,
			"spoof_primary":   int(e.SpoofPrimary),
			"spoof_secondary": int(e.SpoofSecondary),
		}
		if e.LatDeg != nil && e.LonDeg != nil {
			fields["lat_deg"] = *e.LatDeg
			fields["lon_deg"] = *e.LonDeg
		}
		if e.AltM != nil {
			fields["alt_m"] = *e.AltM
		}
		tags := map[string]string{"recording": id}
		at := base.Add(time.Duration(e.OffsetSec * float64(time.Second)))
		points = append(points, influxdb2.NewPoint(measurement, tags, fields, at))
	}
	return points
}
