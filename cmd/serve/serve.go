/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package serve provides the "serve" command: it assembles the dev
// server's collaborators from a ProjectConfig built from flags and
// runs the process until SIGINT/SIGTERM.
package serve

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/venkateshsundaram/react-client/config"
	reactfs "github.com/venkateshsundaram/react-client/fs"
	"github.com/venkateshsundaram/react-client/hmr"
	"github.com/venkateshsundaram/react-client/logger"
	"github.com/venkateshsundaram/react-client/packagejson"
	"github.com/venkateshsundaram/react-client/plugin"
	"github.com/venkateshsundaram/react-client/prebundle"
	"github.com/venkateshsundaram/react-client/rcerrors"
	"github.com/venkateshsundaram/react-client/resolve"
	"github.com/venkateshsundaram/react-client/server"
	"github.com/venkateshsundaram/react-client/transform"
	"github.com/venkateshsundaram/react-client/transpile"
	"github.com/venkateshsundaram/react-client/watch"
)

// Cmd is the "serve" command.
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the development server",
	Long: `Start the dev server: prebundles third-party dependencies, serves
project source over HTTP with on-demand JSX/TS transforms, and pushes
hot-module-replacement updates to connected browsers on every edit.`,
	RunE: run,
}

func init() {
	Cmd.Flags().String("root", ".", "Project root directory")
	Cmd.Flags().Int("port", config.DefaultPort, "Port to listen on")
	Cmd.Flags().Bool("open", true, "Open the browser on start")

	_ = viper.BindPFlag("root", Cmd.Flags().Lookup("root"))
	_ = viper.BindPFlag("server.port", Cmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.open", Cmd.Flags().Lookup("open"))
}

func run(cmd *cobra.Command, args []string) error {
	root := viper.GetString("root")
	port := viper.GetInt("server.port")
	open := viper.GetBool("server.open")

	log := logger.New()
	if l, ok := log.(interface{ Start() }); ok {
		l.Start()
	}
	defer func() {
		if l, ok := log.(interface{ Stop() }); ok {
			l.Stop()
		}
	}()

	fsys := reactfs.NewOSFileSystem()
	cfg, err := config.Load(fsys, config.Options{Root: root, Port: port, Open: open})
	if err != nil {
		// config.Load already returns a ConfigError (spec.md §7: fatal
		// at startup).
		return err
	}

	pkgCache := packagejson.NewMemoryCache()
	resolver := resolve.New(fsys, pkgCache)
	gateway := transpile.New()
	pluginHost := plugin.NewHost(cfg.Plugins, log)

	pb := prebundle.New(fsys, resolver, gateway, cfg.RootDir)
	transforms := transform.NewCache(fsys, pluginHost, gateway)
	broadcaster := hmr.NewBroadcaster()

	log.SetStatus("prebundling dependencies")
	// Refresh returns an IOError for scan failures and, per specifier, a
	// BundleError in failures; neither is fatal at startup (spec.md §7).
	deps, failures, err := pb.Refresh(cfg.SrcDir, cfg.EntryFile)
	if err != nil {
		log.Warn("prebundle scan failed", "error", err)
	} else {
		log.Info("prebundled dependencies", "count", len(deps))
	}
	for specifier, buildErr := range failures {
		log.Warn("prebundle build failed", "specifier", specifier, "error", buildErr)
	}

	fileWatcher, err := watch.NewFSNotifyWatcher()
	if err != nil {
		return rcerrors.IO(cfg.SrcDir, fmt.Errorf("starting file watcher: %w", err))
	}
	if err := watch.AddRecursive(fileWatcher, cfg.SrcDir, ".react-client"); err != nil {
		log.Warn("watching source tree failed", "error", rcerrors.IO(cfg.SrcDir, err))
	}
	manifestPath := manifestPathFor(cfg.RootDir)
	if fsys.Exists(manifestPath) {
		if err := fileWatcher.Add(manifestPath); err != nil {
			log.Warn("watching package.json failed", "error", rcerrors.IO(manifestPath, err))
		}
	}

	orchestrator := watch.New(fileWatcher, transforms, pluginHost, broadcaster, pb, manifestPath, cfg.SrcDir, cfg.EntryFile, log)
	go orchestrator.Run()

	srv := server.New(cfg, fsys, pb, transforms, broadcaster)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.ListenPort))
	if err != nil {
		return rcerrors.IO(fmt.Sprintf(":%d", cfg.ListenPort), fmt.Errorf("binding port: %w", err))
	}

	httpServer := &http.Server{Handler: srv}
	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
		}
	}()

	pluginHost.ServerStart(plugin.StartContext{RootDir: cfg.RootDir, Port: cfg.ListenPort})

	url := fmt.Sprintf("http://localhost:%d", cfg.ListenPort)
	log.Info("dev server started", "url", url)
	log.SetStatus("running at " + url)
	if cfg.OpenOnStart {
		if err := openBrowser(url); err != nil {
			log.Warn("failed to open browser", "error", rcerrors.IO(url, err))
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.SetStatus("shutting down")
	log.Info("shutting down")

	// Resource-release ordering per spec.md §9: stop accepting new
	// WebSocket broadcasts before closing the HTTP server, then the
	// watcher, then exit.
	broadcaster.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Warn("http server shutdown error", "error", rcerrors.IO("http server", err))
	}

	if err := fileWatcher.Close(); err != nil {
		log.Warn("watcher close error", "error", rcerrors.IO(cfg.SrcDir, err))
	}

	return nil
}

func manifestPathFor(rootDir string) string {
	return rootDir + "/package.json"
}

// openBrowser opens url in the platform's default browser. Failure is
// non-fatal: the server continues running either way.
func openBrowser(url string) error {
	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.Command("open", url)
	case "windows":
		c = exec.Command("cmd", "/c", "start", url)
	default:
		c = exec.Command("xdg-open", url)
	}
	return c.Start()
}
