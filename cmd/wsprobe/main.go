// wsprobe is a debug client: it connects to the gateway, subscribes to the
// given symbols, and prints every message it receives.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/ws", "gateway websocket URL")
	symbols := flag.String("symbols", "INJ_USDT", "comma separated symbols to subscribe")
	flag.Parse()

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", *url, err)
	}
	defer conn.Close()

	req := map[string]any{
		"type":    "subscribe",
		"symbols": strings.Split(*symbols, ","),
	}
	if err := conn.WriteJSON(req); err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("read: %v", err)
			return
		}
		var pretty map[string]any
		if err := json.Unmarshal(data, &pretty); err != nil {
			fmt.Println(string(data))
			continue
		}
		out, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(out))
	}
}
