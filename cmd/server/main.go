package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/go-kit/kit/log"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/myattire/backend/tasksvc"
	taskgorm "github.com/myattire/backend/tasksvc/db/gorm"
	"github.com/myattire/backend/tasksvc/pkg/taskendpoint"
	"github.com/myattire/backend/tasksvc/pkg/taskservice"
	"github.com/myattire/backend/tasksvc/pkg/tasktransport"
	"github.com/myattire/backend/usersvc"
	usergorm "github.com/myattire/backend/usersvc/db/gorm"
	"github.com/myattire/backend/usersvc/pkg/userendpoint"
	"github.com/myattire/backend/usersvc/pkg/userservice"
	"github.com/myattire/backend/usersvc/pkg/usertransport"
	"github.com/oklog/oklog/pkg/group"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	libgorm "gorm.io/gorm"
)

func main() {
	if usersvc.AppEnv != "production" {
		godotenv.Load()
	}

	fs := flag.NewFlagSet("server", flag.ExitOnError)
	var (
		httpAddr    = fs.String("http.addr", getEnv("HTTP_ADDR", ":8080"), "HTTP listen address")
		databaseURL = fs.String("database.url", getEnv("DATABASE_URL", ""), "Database URL")
		requireAuth = fs.Bool("auth.required", getEnvBool("AUTH_REQUIRED", false), "Require bearer tokens on task and sector routes")
	)

	fs.Usage = usageFor(fs, os.Args[0]+" [flags]")
	fs.Parse(os.Args[1:])

	var logger log.Logger
	{
		logger = log.NewLogfmtLogger(os.Stderr)
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = log.With(logger, "caller", log.DefaultCaller)
	}

	var db *libgorm.DB
	var err error
	{
		if *databaseURL != "" {
			db, err = libgorm.Open(postgres.Open(*databaseURL), &libgorm.Config{})
		} else {
			db, err = libgorm.Open(sqlite.Open("gorm.db"), &libgorm.Config{})
		}
		if err != nil {
			logger.Log("err", err)
			os.Exit(1)
		}
	}

	db.AutoMigrate(&usersvc.User{}, &tasksvc.Task{}, &tasksvc.Sector{})

	userRepository := usergorm.NewUserRepository(db)
	taskRepository := taskgorm.NewTaskRepository(db)
	sectorRepository := taskgorm.NewSectorRepository(db)

	fieldKeys := []string{"method"}

	var users userservice.Service
	{
		users = userservice.New(userRepository, userservice.NewTokenizer(), logger)
		users = userservice.InstrumentingMiddleware(
			kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
				Namespace: "api",
				Subsystem: "user_service",
				Name:      "request_count",
				Help:      "Number of requests received.",
			}, fieldKeys),
			kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
				Namespace: "api",
				Subsystem: "user_service",
				Name:      "request_latency_microseconds",
				Help:      "Total duration of requests in microseconds.",
			}, fieldKeys),
		)(users)
	}

	var tasks taskservice.Service
	{
		tasks = taskservice.New(taskRepository, sectorRepository, logger)
		tasks = taskservice.InstrumentingMiddleware(
			kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
				Namespace: "api",
				Subsystem: "task_service",
				Name:      "request_count",
				Help:      "Number of requests received.",
			}, fieldKeys),
			kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
				Namespace: "api",
				Subsystem: "task_service",
				Name:      "request_latency_microseconds",
				Help:      "Total duration of requests in microseconds.",
			}, fieldKeys),
		)(tasks)
	}

	var (
		userEndpoints = userendpoint.New(users, logger)
		taskEndpoints = taskendpoint.New(tasks, logger)
		userHandler   = usertransport.NewHTTPHandler(userEndpoints, logger)
		taskHandler   = tasktransport.NewHTTPHandler(taskEndpoints, *requireAuth, logger)
	)

	r := mux.NewRouter()
	r.PathPrefix("/usuarios").Handler(userHandler)
	r.PathPrefix("/tarefas").Handler(taskHandler)
	r.PathPrefix("/setores").Handler(taskHandler)
	r.Path("/metrics").Handler(taskHandler)

	var g group.Group
	{
		httpListener, err := net.Listen("tcp", *httpAddr)
		if err != nil {
			logger.Log("transport", "HTTP", "during", "Listen", "err", err)
			os.Exit(1)
		}
		g.Add(func() error {
			logger.Log("transport", "HTTP", "addr", *httpAddr)
			return http.Serve(httpListener, r)
		}, func(error) {
			httpListener.Close()
		})
	}
	{
		// This function just sits and waits for ctrl-C.
		cancelInterrupt := make(chan struct{})
		g.Add(func() error {
			c := make(chan os.Signal, 1)
			signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-c:
				return fmt.Errorf("received signal %s", sig)
			case <-cancelInterrupt:
				return nil
			}
		}, func(error) {
			close(cancelInterrupt)
		})
	}
	logger.Log("exit", g.Run())
}

func usageFor(fs *flag.FlagSet, short string) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "USAGE\n")
		fmt.Fprintf(os.Stderr, "  %s\n", short)
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "FLAGS\n")
		w := tabwriter.NewWriter(os.Stderr, 0, 2, 2, ' ', 0)
		fs.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(w, "\t-%s %s\t%s\n", f.Name, f.DefValue, f.Usage)
		})
		w.Flush()
		fmt.Fprintf(os.Stderr, "\n")
	}
}

func getEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = fallback
	}
	return value
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}
