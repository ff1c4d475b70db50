// Command bridge runs the ClickHouse HTTP-to-JDBC bridge: it exposes a
// small HTTP surface that lets ClickHouse read from arbitrary SQL backends
// by translating query results into ClickHouse's native wire format. The
// /write route only acknowledges a request; it writes nothing to a backend.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/riverstonedata/ch-jdbc-bridge/internal/datasource"
	"github.com/riverstonedata/ch-jdbc-bridge/internal/namedquery"
	"github.com/riverstonedata/ch-jdbc-bridge/internal/server"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/config"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/logger"
)

const serviceVersion = "1.0.0"

func main() {
	home := flag.String("home", envOr("DATASOURCE_BRIDGE_HOME", "."), "bridge home directory (config/, containing server.json, datasources/, queries/)")
	flag.Parse()

	log := logger.New("ch-jdbc-bridge", serviceVersion)

	cfg, err := config.LoadServer(*home)
	if err != nil {
		log.Fatalf("bridge: loading config/server.json: %v", err)
	}

	resolver := envResolver{}
	sources := datasource.New(resolver, log)
	sources.RegisterFactory("clickhouse", datasource.NewSQLFactory("clickhouse", "clickhouse", log))
	sources.RegisterFactory("postgres", datasource.NewSQLFactory("postgres", "postgres", log))
	sources.RegisterFactory("mysql", datasource.NewSQLFactory("mysql", "mysql", log))

	queries := namedquery.New(log)

	dsDir := home2(*home, "config", "datasources")
	qDir := home2(*home, "config", "queries")

	if err := reloadDatasources(sources, dsDir, log); err != nil {
		log.Warnf("bridge: initial datasources load: %v", err)
	}
	if err := reloadQueries(queries, qDir, log); err != nil {
		log.Warnf("bridge: initial queries load: %v", err)
	}

	stopDSWatch, err := config.WatchDirectory(dsDir, cfg.ScanPeriod(), log, func() {
		if err := reloadDatasources(sources, dsDir, log); err != nil {
			log.Warnf("bridge: reloading datasources: %v", err)
		}
	})
	if err != nil {
		log.Warnf("bridge: could not start datasources watch: %v", err)
	} else {
		defer stopDSWatch()
	}

	stopQWatch, err := config.WatchDirectory(qDir, cfg.ScanPeriod(), log, func() {
		if err := reloadQueries(queries, qDir, log); err != nil {
			log.Warnf("bridge: reloading queries: %v", err)
		}
	})
	if err != nil {
		log.Warnf("bridge: could not start queries watch: %v", err)
	} else {
		defer stopQWatch()
	}

	srv := server.New(cfg, sources, queries, log)
	if err := srv.Start(); err != nil {
		log.Fatalf("bridge: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Infof("bridge: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Warnf("bridge: server shutdown: %v", err)
	}
	if err := sources.Close(); err != nil {
		log.Warnf("bridge: closing datasources: %v", err)
	}
}

func reloadDatasources(reg *datasource.Registry, dir string, log *logger.Logger) error {
	configs, err := config.LoadDirectory(dir)
	if err != nil {
		return err
	}
	log.Debugf("bridge: reloading %d datasource(s) from %s", len(configs), dir)
	reg.Reload(configs)
	return nil
}

func reloadQueries(reg *namedquery.Registry, dir string, log *logger.Logger) error {
	configs, err := config.LoadDirectory(dir)
	if err != nil {
		return err
	}
	log.Debugf("bridge: reloading %d named quer(y/ies) from %s", len(configs), dir)
	reg.Reload(configs)
	return nil
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func home2(base string, parts ...string) string {
	p := base
	for _, part := range parts {
		p = p + string(os.PathSeparator) + part
	}
	return p
}
