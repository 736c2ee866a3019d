// Command stripctl sends attribute writes to a running stripd.
//
//	stripctl color ff8000
//	stripctl brightness 128
//	stripctl skip 2
//	stripctl speed 1.5
//	stripctl twinkle 20
//	stripctl raw 5 01140000000000000000000000000000
//	stripctl health
//	stripctl watch
package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledstrip/internal/color"
	"github.com/coreman2200/ledstrip/internal/transport"
	"github.com/coreman2200/ledstrip/internal/ws"
)

var errUsage = errors.New("usage: stripctl [-addr host:port] color|brightness|skip|speed|twinkle|raw|health|watch [args]")

func main() {
	addr := flag.String("addr", "localhost:8080", "stripd address")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	args := flag.Args()
	if len(args) == 0 {
		log.Fatal().Err(errUsage).Send()
	}
	var err error
	switch args[0] {
	case "health":
		err = health(*addr)
	case "watch":
		err = watch(*addr)
	default:
		var ev transport.WriteEvent
		if ev, err = buildWrite(args); err == nil {
			err = send(*addr, ev)
		}
	}
	if err != nil {
		log.Fatal().Err(err).Str("cmd", args[0]).Msg("failed")
	}
}

// buildWrite turns a subcommand and its argument into an attribute write.
func buildWrite(args []string) (transport.WriteEvent, error) {
	want := 2
	if len(args) > 0 && args[0] == "raw" {
		want = 3
	}
	if len(args) != want {
		return transport.WriteEvent{}, errUsage
	}
	switch args[0] {
	case "color":
		c, err := color.ParseHex(args[1])
		if err != nil {
			return transport.WriteEvent{}, err
		}
		return transport.EncodeColor(c), nil
	case "brightness", "skip", "twinkle":
		v, err := strconv.ParseUint(args[1], 10, 8)
		if err != nil {
			return transport.WriteEvent{}, fmt.Errorf("%s: %w", args[0], err)
		}
		switch args[0] {
		case "brightness":
			return transport.EncodeBrightness(uint8(v)), nil
		case "skip":
			return transport.EncodeSkip(uint8(v)), nil
		}
		return transport.EncodeTwinkle(uint8(v)), nil
	case "speed":
		f, err := strconv.ParseFloat(args[1], 32)
		if err != nil {
			return transport.WriteEvent{}, fmt.Errorf("speed: %w", err)
		}
		return transport.EncodeSpeed(float32(f)), nil
	case "raw":
		h, err := strconv.ParseUint(args[1], 10, 8)
		if err != nil {
			return transport.WriteEvent{}, fmt.Errorf("raw handle: %w", err)
		}
		data, err := hex.DecodeString(strings.TrimPrefix(args[2], "0x"))
		if err != nil {
			return transport.WriteEvent{}, fmt.Errorf("raw payload: %w", err)
		}
		return transport.WriteEvent{Attr: transport.Attribute(h), Data: data}, nil
	}
	return transport.WriteEvent{}, errUsage
}

func dial(addr, path string) (*websocket.Conn, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: path}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.String(), err)
	}
	return conn, nil
}

func send(addr string, ev transport.WriteEvent) error {
	conn, err := dial(addr, "/control")
	if err != nil {
		return err
	}
	defer conn.Close()

	msg := append([]byte{byte(ev.Attr)}, ev.Data...)
	if err := conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
		return err
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var reply ws.ControlReply
	if err := conn.ReadJSON(&reply); err != nil {
		return err
	}
	if !reply.OK {
		return errors.New(reply.Error)
	}
	log.Info().Stringer("write", ev).Str("device", reply.Topology.Device).Msg("ok")
	return nil
}

func health(addr string) error {
	resp, err := http.Get((&url.URL{Scheme: "http", Host: addr, Path: "/health"}).String())
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	var h ws.Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return err
	}
	out, _ := json.MarshalIndent(h, "", "  ")
	fmt.Println(string(out))
	return nil
}

// watch prints diagnostics until the connection drops.
func watch(addr string) error {
	conn, err := dial(addr, "/diag")
	if err != nil {
		return err
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	}
}
