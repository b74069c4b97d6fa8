package main

import (
	"context"
	"flag"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/soundpath/motiontx/api"
	"github.com/soundpath/motiontx/stream"
	"github.com/soundpath/motiontx/transport"
)

type app struct {
	Config   stream.Config
	Log      *zap.Logger
	Streamer *stream.Streamer
}

func newApp(log *zap.Logger) *app {
	a := new(app)
	a.Log = log
	return a
}

func (a *app) readConfig(configPath string) error {
	f, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return yaml.NewDecoder(f).Decode(&a.Config)
}

func (a *app) schedulerConfig() stream.SchedulerConfig {
	cfg := stream.DefaultSchedulerConfig()
	if v := a.Config.Scheduler.MinIntervalMs; v > 0 {
		cfg.MinInterval = time.Duration(v) * time.Millisecond
	}
	if v := a.Config.Scheduler.MaxIntervalMs; v > 0 {
		cfg.MaxInterval = time.Duration(v) * time.Millisecond
	}
	if v := a.Config.Scheduler.StepMs; v > 0 {
		cfg.Step = time.Duration(v) * time.Millisecond
	}
	if v := a.Config.Scheduler.MaxBatchSize; v > 0 {
		cfg.MaxBatchSize = v
	}
	return cfg
}

// buildTransport picks the outgoing adapter from config.
func (a *app) buildTransport() (transport.Transport, error) {
	if a.Config.Stream.Transport == "osc" {
		a.Log.Info("using osc transport",
			zap.String("host", a.Config.Osc.Host),
			zap.Int("port", a.Config.Osc.Port))
		return transport.NewOSC(a.Config.Osc.Host, a.Config.Osc.Port), nil
	}

	options := mqtt.NewClientOptions().
		AddBroker(a.Config.Mqtt.URL).
		SetClientID("motiontx").
		SetUsername(a.Config.Mqtt.Username).
		SetPassword(a.Config.Mqtt.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetOnConnectHandler(func(mqtt.Client) {
			a.Log.Info("mqtt connected", zap.String("broker", a.Config.Mqtt.URL))
		})
	client := mqtt.NewClient(options)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return transport.NewMQTT(client, a.Config.Mqtt.Topic, a.Config.Mqtt.Qos), nil
}

func (a *app) run(ctx context.Context) error {
	tx, err := a.buildTransport()
	if err != nil {
		return err
	}

	sched := stream.NewScheduler(ctx, a.schedulerConfig(), tx, a.Log.Named("scheduler"))
	a.Streamer = stream.NewStreamer(a.Config.Stream, sched, a.Log.Named("streamer"))

	if addr := a.Config.Monitor.Addr; addr != "" {
		monitor := api.NewServer(addr, a.Streamer, a.Log.Named("monitor"))
		go func() {
			if err := monitor.Serve(); err != nil {
				a.Log.Error("monitor stopped", zap.Error(err))
			}
		}()
	}

	a.Streamer.Run(ctx)
	return nil
}

func main() {
	configPath := flag.String("config", "config.yaml", "YAML config file.")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	a := newApp(log)
	if err := a.readConfig(*configPath); err != nil {
		log.Fatal("config read failed", zap.String("path", *configPath), zap.Error(err))
	}
	log.Info("config loaded", zap.String("path", *configPath))

	if err := a.run(context.Background()); err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}
}
