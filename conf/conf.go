package conf

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"
)

// Duration accepts "30s" style values in JSON config files.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)

	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

type MySQLConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"db"`
}

type ParamSet struct {
	Persons int `json:"persons"`
	Records int `json:"records"`
}

type Config struct {
	Warmup     int         `json:"warmup"`
	Measured   int         `json:"measured"`
	Timeout    Duration    `json:"timeout"`
	Sequential bool        `json:"sequential"`
	Seed       int64       `json:"seed"`
	Workers    int         `json:"workers"`
	Out        string      `json:"out"`
	Provision  string      `json:"provision"`
	Image      string      `json:"image"`
	ParamSets  []ParamSet  `json:"param_sets"`
	MySQL      MySQLConfig `json:"mysql"`
}

// read config file.
func ReadConfig(path string, config *Config) error {
	if path == "" {
		return nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read file: %w", err)
	}

	if err := json.Unmarshal(b, config); err != nil {
		return fmt.Errorf("could not parse json: %w", err)
	}

	return nil
}

const (
	defaultWarmup   = 3
	defaultMeasured = 10
	defaultTimeout  = 30 * time.Second
	defaultSeed     = 42
	defaultWorkers  = 4
	defaultPersons  = 500
	defaultRecords  = 50000

	defaultMySQLPort = 3306

	ProvisionDocker   = "docker"
	ProvisionExternal = "external"
)

var DefaultConfig = Config{
	Warmup:    defaultWarmup,
	Measured:  defaultMeasured,
	Timeout:   Duration(defaultTimeout),
	Seed:      defaultSeed,
	Workers:   defaultWorkers,
	Out:       "results.json",
	Provision: ProvisionDocker,
	Image:     "mysql:9.0",
	ParamSets: []ParamSet{{Persons: defaultPersons, Records: defaultRecords}},
	MySQL: MySQLConfig{
		Host:     "localhost",
		Port:     defaultMySQLPort,
		User:     "bench",
		Password: "bench",
		Database: "benchmark",
	},
}

// initialize config with defaults.
func InitConfig(name string, args []string) (*Config, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	config := DefaultConfig

	var (
		warmup, measured, workers, persons, records, port int
		seed                                              int64
		timeout                                           time.Duration
		sequential                                        bool
		out, provision, image                             string
		host, user, password, db                          string
		confPath                                          string
	)

	flags.IntVar(&warmup, "warmup", DefaultConfig.Warmup, "warmup executions per variant (discarded)")
	flags.IntVar(&measured, "runs", DefaultConfig.Measured, "measured executions per variant")
	flags.DurationVar(&timeout, "timeout", time.Duration(DefaultConfig.Timeout), "per-execution timeout")
	flags.BoolVar(&sequential, "sequential", DefaultConfig.Sequential, "run each variant's block in full instead of interleaving")
	flags.Int64Var(&seed, "seed", DefaultConfig.Seed, "dataset generator seed")
	flags.IntVar(&workers, "workers", DefaultConfig.Workers, "dataset loader worker count")
	flags.StringVar(&out, "out", DefaultConfig.Out, "result artifact output path (empty to skip)")
	flags.StringVar(&provision, "provision", DefaultConfig.Provision, "environment provisioning mode: docker or external")
	flags.StringVar(&image, "image", DefaultConfig.Image, "mysql image for docker provisioning")
	flags.IntVar(&persons, "persons", defaultPersons, "salesperson count (overrides param_sets)")
	flags.IntVar(&records, "records", defaultRecords, "sales record count (overrides param_sets)")
	flags.StringVar(&host, "host", DefaultConfig.MySQL.Host, "database host (external mode)")
	flags.IntVar(&port, "port", DefaultConfig.MySQL.Port, "database port (external mode)")
	flags.StringVar(&user, "user", DefaultConfig.MySQL.User, "database user")
	flags.StringVar(&password, "password", DefaultConfig.MySQL.Password, "database password")
	flags.StringVar(&db, "db", DefaultConfig.MySQL.Database, "database schema name")
	flags.StringVar(&confPath, "config", "", "custom config path")

	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("flag error: %w", err)
	}

	// load user defined custom config file
	if err := ReadConfig(confPath, &config); err != nil {
		return nil, fmt.Errorf("invalid config %s, %w", confPath, err)
	}

	// -persons/-records collapse the run to a single parameter set,
	// seeded from the first configured one
	singleSet := ParamSet{Persons: defaultPersons, Records: defaultRecords}
	if len(config.ParamSets) > 0 {
		singleSet = config.ParamSets[0]
	}

	// provided flags always override configuration
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "warmup":
			config.Warmup = warmup
		case "runs":
			config.Measured = measured
		case "timeout":
			config.Timeout = Duration(timeout)
		case "sequential":
			config.Sequential = sequential
		case "seed":
			config.Seed = seed
		case "workers":
			config.Workers = workers
		case "out":
			config.Out = out
		case "provision":
			config.Provision = provision
		case "image":
			config.Image = image
		case "persons":
			singleSet.Persons = persons
			config.ParamSets = []ParamSet{singleSet}
		case "records":
			singleSet.Records = records
			config.ParamSets = []ParamSet{singleSet}
		case "host":
			config.MySQL.Host = host
		case "port":
			config.MySQL.Port = port
		case "user":
			config.MySQL.User = user
		case "password":
			config.MySQL.Password = password
		case "db":
			config.MySQL.Database = db
		}
	})

	if len(config.ParamSets) == 0 {
		config.ParamSets = DefaultConfig.ParamSets
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validate(config *Config) error {
	if config.Measured < 1 {
		return fmt.Errorf("runs must be at least 1, got %d", config.Measured)
	}

	if config.Warmup < 0 {
		return fmt.Errorf("warmup must not be negative, got %d", config.Warmup)
	}

	if config.Provision != ProvisionDocker && config.Provision != ProvisionExternal {
		return fmt.Errorf("unknown provision mode %q", config.Provision)
	}

	for _, p := range config.ParamSets {
		if p.Persons < 1 || p.Records < 0 {
			return fmt.Errorf("invalid param set {persons: %d, records: %d}", p.Persons, p.Records)
		}
	}

	return nil
}
