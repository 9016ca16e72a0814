package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os/exec"
	"runtime"
	"time"

	"github.com/zintix-labs/slicelab/demo"
	"github.com/zintix-labs/slicelab/server"
	"github.com/zintix-labs/slicelab/server/svrcfg"
)

// 啟動 demo server，就緒後用瀏覽器打開 preset 列表
func main() {
	scfg, err := demo.NewServerConfig()
	if err != nil {
		log.Fatal("demo server config: " + err.Error())
	}
	scfg.Addr = svrcfg.DefaultAddr
	url := "http://localhost" + scfg.Addr + "/v1/presets"

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := waitForTCP(ctx, scfg.Addr); err != nil {
			log.Fatal("dev server not ready: " + err.Error())
		}
		if err := openBrowser(url); err != nil {
			log.Printf("open browser failed: %v (visit %s)", err, url)
		}
	}()
	if err := server.Run(scfg); err != nil {
		log.Fatal(err)
	}
}

func waitForTCP(ctx context.Context, addr string) error {
	var d net.Dialer
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		dctx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
		conn, err := d.DialContext(dctx, "tcp", "127.0.0.1"+addr)
		cancel()
		if err == nil {
			return conn.Close()
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s: %w", addr, ctx.Err())
		case <-tick.C:
		}
	}
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
