package engine

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"

	"github.com/tickframe/backtest/internal/position/commission"
)

// Config parameterizes a single backtest run (§6 "run_backtest" /
// "run_tick_backtest" inputs, plus the defaults §6 names).
type Config struct {
	// Interval is the bar aggregation label (§4.2). Ignored in tick mode.
	Interval string `yaml:"interval" json:"interval" jsonschema:"title=Interval,description=Bar aggregation interval label (e.g. 1m 5m 1h)"`
	// Commission is the flat dollar fee charged once per closed round-trip.
	Commission float64 `yaml:"commission" json:"commission" validate:"gte=0" jsonschema:"title=Commission,description=Flat commission charged per round-trip trade in USD,minimum=0"`
	// PointValue is the dollar multiplier per price point (ES=50, NQ=20).
	PointValue float64 `yaml:"point_value" json:"point_value" validate:"required,gt=0" jsonschema:"title=Point Value,description=Dollar value per price point,exclusiveMinimum=0"`
	// BatchSize is the tick-mode batch length; ignored in bar mode.
	BatchSize int64 `yaml:"batch_size" json:"batch_size" validate:"gte=0" jsonschema:"title=Batch Size,description=Tick-mode batch length (0 uses the default of 100000)"`
	// Broker selects the commission model (§4's FlatCommissionFee by default).
	Broker commission.Broker `yaml:"broker" json:"broker" jsonschema:"title=Broker,description=Commission model to apply"`
	// ScaleInt100 divides raw SCID price fields by 100 on read (§4.1).
	ScaleInt100 bool                       `yaml:"scale_int_100" json:"scale_int_100" jsonschema:"title=Scaled Integer Prices,description=Treat raw price fields as integer times 100"`
	StartTime   optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional inclusive lower bound on tick timestamps"`
	EndTime     optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional exclusive upper bound on tick timestamps"`
}

// DefaultCommission, DefaultPointValue and DefaultBatchSize are the §6
// documented defaults.
const (
	DefaultCommission = 0.0
	DefaultPointValue = 50.0
	DefaultBatchSize  = int64(100_000)
)

// DefaultConfig returns a Config with every §6 default applied and the flat
// commission broker selected.
func DefaultConfig() Config {
	return Config{
		Commission:  DefaultCommission,
		PointValue:  DefaultPointValue,
		BatchSize:   DefaultBatchSize,
		Broker:      commission.BrokerFlat,
		StartTime:   optional.None[time.Time](),
		EndTime:     optional.None[time.Time](),
	}
}

// UnmarshalYAML implements custom unmarshaling so start_time/end_time can
// be left unset in a YAML document without requiring a concrete zero time.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type rawConfig struct {
		Interval    string             `yaml:"interval"`
		Commission  float64            `yaml:"commission"`
		PointValue  float64            `yaml:"point_value"`
		BatchSize   int64              `yaml:"batch_size"`
		Broker      commission.Broker  `yaml:"broker"`
		ScaleInt100 bool               `yaml:"scale_int_100"`
		StartTime   *time.Time         `yaml:"start_time"`
		EndTime     *time.Time         `yaml:"end_time"`
	}

	raw := rawConfig{
		Commission: DefaultCommission,
		PointValue: DefaultPointValue,
		BatchSize:  DefaultBatchSize,
		Broker:     commission.BrokerFlat,
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	c.Interval = raw.Interval
	c.Commission = raw.Commission
	c.PointValue = raw.PointValue
	c.BatchSize = raw.BatchSize
	c.Broker = raw.Broker
	c.ScaleInt100 = raw.ScaleInt100

	if raw.StartTime != nil {
		c.StartTime = optional.Some(*raw.StartTime)
	} else {
		c.StartTime = optional.None[time.Time]()
	}
	if raw.EndTime != nil {
		c.EndTime = optional.Some(*raw.EndTime)
	} else {
		c.EndTime = optional.None[time.Time]()
	}

	return nil
}

// Validate runs struct-tag validation and fills in any zero-valued
// defaults that §6 names (commission/point_value/batch_size).
func (c *Config) Validate() error {
	if c.PointValue == 0 {
		c.PointValue = DefaultPointValue
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Broker == "" {
		c.Broker = commission.BrokerFlat
	}

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid backtest config: %w", err)
	}

	return nil
}

// EffectiveBatchSize returns BatchSize, falling back to the default when
// unset.
func (c *Config) EffectiveBatchSize() int64 {
	if c.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return c.BatchSize
}

// GenerateSchema generates a JSON schema for Config, following the
// teacher's reflector pattern for optional.Option[time.Time] and
// string-enum fields.
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}
			if strings.Contains(t.String(), "commission.Broker") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission.AllBrokers,
				}
			}
			return nil
		},
	}

	schema := reflector.Reflect(c)
	schema.Title = "backtest-engine-config"
	schema.Description = "Configuration schema for a single SCID backtest run"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON renders GenerateSchema's result as indented JSON.
func (c *Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
