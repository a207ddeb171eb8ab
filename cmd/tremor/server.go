package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/tremor-rt/tremor/ast"
	"github.com/tremor-rt/tremor/internal/telemetry"
	"github.com/tremor-rt/tremor/parser"
	"github.com/tremor-rt/tremor/pipeline"
	"github.com/tremor-rt/tremor/query"
	"github.com/tremor-rt/tremor/stdlib"
	"github.com/tremor-rt/tremor/value"
)

// artefact is the reduced YAML schema spec.md §6 describes for
// `server run -f`: a named pipeline built from one trickle file plus
// its creation-time `with` arguments.
type artefact struct {
	ID      string                 `yaml:"id"`
	Trickle string                 `yaml:"trickle"`
	With    map[string]interface{} `yaml:"with"`
}

func newServerCommand() *cobra.Command {
	serverCmd := &cobra.Command{Use: "server", Short: "manage a long-running tremor server"}
	serverCmd.AddCommand(newServerRunCommand())
	return serverCmd
}

func newServerRunCommand() *cobra.Command {
	var artefactFiles []string
	var storageDir, pidFile, apiHost string
	var recursionLimit int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "load pipeline artefacts and serve them until signaled",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(artefactFiles, storageDir, pidFile, apiHost, recursionLimit)
		},
	}
	cmd.Flags().StringSliceVarP(&artefactFiles, "file", "f", nil, "pipeline artefact YAML file(s)")
	cmd.Flags().StringVarP(&storageDir, "storage", "d", "", "artefact storage directory (read-only at boot; live reload is a connector-layer concern)")
	cmd.Flags().StringVarP(&pidFile, "pidfile", "p", "", "write the server's pid to this file")
	cmd.Flags().StringVar(&apiHost, "api-host", "127.0.0.1:9898", "status/metrics HTTP listen address")
	cmd.Flags().IntVar(&recursionLimit, "recursion-limit", 1024, "user-function tail recursion depth limit")
	return cmd
}

func runServer(artefactFiles []string, storageDir, pidFile, apiHost string, recursionLimit int) error {
	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644); err != nil {
			return err
		}
		defer os.Remove(pidFile)
	}

	log := logrus.New()
	promReg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(promReg)
	reg := stdlib.NewRegistry()

	pipes := make(map[string]*pipeline.Pipeline, len(artefactFiles))
	for _, f := range artefactFiles {
		id, p, err := loadArtefact(f, storageDir, reg, metrics, log, recursionLimit)
		if err != nil {
			return fmt.Errorf("loading artefact %s: %w", f, err)
		}
		pipes[id] = p
		log.WithField("artefact", id).Info("pipeline loaded")
	}

	mu := &sync.RWMutex{}
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	router.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		defer mu.RUnlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"pipelines":%d}`, len(pipes))
	})

	srv := &http.Server{Addr: apiHost, Handler: router}
	go func() {
		log.WithField("addr", apiHost).Info("status/metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("status server stopped")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("signal received, shutting down")
	return srv.Close()
}

func loadArtefact(path, storageDir string, reg *stdlib.Registry, metrics *telemetry.Metrics, log *logrus.Logger, recursionLimit int) (string, *pipeline.Pipeline, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	var a artefact
	if err := yaml.Unmarshal(raw, &a); err != nil {
		return "", nil, err
	}
	trickleDir := storageDir
	trickleFile := a.Trickle
	if trickleDir != "" {
		trickleFile = trickleDir + "/" + trickleFile
	}
	src, err := os.ReadFile(trickleFile)
	if err != nil {
		return "", nil, err
	}
	q, err := parser.ParseQuery(trickleFile, string(src))
	if err != nil {
		return "", nil, err
	}
	g, err := query.Compile(q)
	if err != nil {
		return "", nil, err
	}
	applyArtefactWith(g, a.With)

	p, err := pipeline.New(g, map[string]*ast.FnDef{}, reg, metrics, log)
	if err != nil {
		return "", nil, err
	}
	p.RecursionLimit = recursionLimit
	return a.ID, p, nil
}

// applyArtefactWith overlays the artefact's top-level `with` map onto
// every node's Args, giving deployment-time values precedence over the
// trickle source's own `with` clauses.
func applyArtefactWith(g *query.Graph, with map[string]interface{}) {
	if len(with) == 0 {
		return
	}
	for _, n := range g.Nodes {
		if n.With == nil {
			n.With = map[string]value.Value{}
		}
		for k, v := range with {
			n.With[k] = yamlToValue(v)
		}
	}
}

func yamlToValue(v interface{}) value.Value {
	switch x := v.(type) {
	case nil:
		return value.Null{}
	case bool:
		return value.Bool(x)
	case int:
		return value.Int(int64(x))
	case int64:
		return value.Int(x)
	case float64:
		return value.Float(x)
	case string:
		return value.Str(x)
	case []interface{}:
		arr := &value.Array{}
		for _, item := range x {
			arr.Items = append(arr.Items, yamlToValue(item))
		}
		return arr
	case map[interface{}]interface{}:
		rec := value.NewRecord()
		for k, item := range x {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			rec.Set(ks, yamlToValue(item))
		}
		return rec
	case map[string]interface{}:
		rec := value.NewRecord()
		for k, item := range x {
			rec.Set(k, yamlToValue(item))
		}
		return rec
	}
	return value.Null{}
}
