// Command kilnd runs the server: it loads configuration, opens the
// listening socket, and dispatches each accepted connection through the
// Handshake -> Status/Login -> Configuration -> Play state machine.
package main

import (
	"context"
	"flag"
	"net"

	"github.com/kilnmc/kiln/internal/config"
	"github.com/kilnmc/kiln/internal/logging"
	"github.com/kilnmc/kiln/session"
)

func main() {
	configPath := flag.String("config", "server.yaml", "path to the server's YAML configuration file")
	flag.Parse()

	log := logging.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn("using default configuration: %v", err)
		cfg = config.Default()
	}

	ln, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		log.Error("listen on %s: %v", cfg.ListenAddress, err)
		return
	}
	defer ln.Close()
	log.Info("listening on %s", cfg.ListenAddress)

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Error("accept: %v", err)
			continue
		}
		go serveConnection(conn, cfg, log)
	}
}

func serveConnection(conn net.Conn, cfg config.Config, log *logging.Logger) {
	defer conn.Close()

	sess := session.NewConnection(conn, log, nil)
	sess.SetStatusResponder(func() string {
		return `{"version":{"name":"kiln","protocol":772},"players":{"max":` +
			itoa(cfg.MaxPlayers) + `,"online":0},"description":{"text":"` + cfg.Motd + `"}}`
	})

	if err := sess.Serve(context.Background()); err != nil {
		log.Info("connection from %s closed: %v", conn.RemoteAddr(), err)
	}
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
