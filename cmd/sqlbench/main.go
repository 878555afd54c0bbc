package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/benchkit/sqlbench"
	"github.com/benchkit/sqlbench/conf"
	"github.com/benchkit/sqlbench/database"
	"github.com/benchkit/sqlbench/dataset"
	"github.com/benchkit/sqlbench/provision"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	config, err := conf.InitConfig(os.Args[0], os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	registry := sqlbench.NewRegistry()
	for _, v := range sqlbench.DefaultVariants() {
		if err := registry.Register(v); err != nil {
			log.Fatal(err)
		}
	}

	var env provision.Provisioner

	switch config.Provision {
	case conf.ProvisionDocker:
		env = &provision.Docker{
			Image:    config.Image,
			Database: config.MySQL.Database,
			User:     config.MySQL.User,
			Password: config.MySQL.Password,
			Log:      log,
		}
	case conf.ProvisionExternal:
		env = &provision.External{Conn: database.Config{
			Host:     config.MySQL.Host,
			Port:     config.MySQL.Port,
			User:     config.MySQL.User,
			Password: config.MySQL.Password,
			Database: config.MySQL.Database,
		}}
	default:
		log.Fatalf("unknown provision mode %q", config.Provision)
	}

	gen := &dataset.Generator{
		Seed:    config.Seed,
		Workers: config.Workers,
		Log:     log,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	suite := sqlbench.NewSuite(env, gen, registry, log)

	output, err := suite.Run(ctx, sqlbench.SuiteConfig{
		Warmup:     config.Warmup,
		Measured:   config.Measured,
		Timeout:    time.Duration(config.Timeout),
		Sequential: config.Sequential,
		ParamSets:  paramSets(config),
	})

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled) && output != nil:
		// interrupted runs still report whatever was collected
		log.Warn("benchmark interrupted, reporting partial results")
	default:
		// the harness itself could not run
		log.Fatal(err)
	}

	for _, pr := range output.Reports {
		fmt.Printf("\n#dataset persons=%d records=%d\n", pr.Params.Persons, pr.Params.Records)
		fmt.Print(sqlbench.FormatReport(pr.Report))
	}

	if config.Out != "" {
		if err := sqlbench.WriteArtifact(config.Out, output.Artifact); err != nil {
			log.Fatal(err)
		}

		log.WithField("path", config.Out).Info("results written")
	}
}

func paramSets(config *conf.Config) []sqlbench.Params {
	sets := make([]sqlbench.Params, 0, len(config.ParamSets))
	for _, p := range config.ParamSets {
		sets = append(sets, sqlbench.Params{Persons: p.Persons, Records: p.Records})
	}

	return sets
}
