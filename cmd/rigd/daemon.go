package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dougsko/rigd/pkg/catalog"
	"github.com/dougsko/rigd/pkg/config"
	"github.com/dougsko/rigd/pkg/controller"
	"github.com/dougsko/rigd/pkg/logging"
	"github.com/dougsko/rigd/pkg/rigctld"
	"github.com/dougsko/rigd/pkg/storage"
	"github.com/dougsko/rigd/pkg/transport"
)

// RigDaemon wires the rig session, the rigctld listener and the HTTP
// status API together
type RigDaemon struct {
	config *config.Config
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	session   *controller.Session
	channels  *storage.ChannelStore
	netServer *rigctld.Server
	webServer *http.Server

	// websocket state-stream clients
	wsMutex   sync.Mutex
	wsClients map[chan statusSnapshot]struct{}
}

// NewRigDaemon creates a daemon instance: looks up the model in the
// catalog, opens the serial transport and connects the session
func NewRigDaemon(cfg *config.Config) (*RigDaemon, error) {
	ctx, cancel := context.WithCancel(context.Background())

	cat := catalog.New()
	if cfg.Radio.CatalogFile != "" {
		if err := cat.LoadOverlay(cfg.Radio.CatalogFile); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to load catalog overlay: %w", err)
		}
	}

	caps, err := cat.Lookup(cfg.Radio.Model)
	if err != nil {
		cancel()
		return nil, err
	}

	tr, err := transport.OpenSerial(transport.Config{
		Port:     cfg.Radio.Device,
		BaudRate: cfg.Radio.BaudRate,
	})
	if err != nil {
		cancel()
		return nil, err
	}

	session, err := controller.Connect(caps, tr, time.Duration(cfg.Radio.TimeoutMs)*time.Millisecond)
	if err != nil {
		cancel()
		return nil, err
	}
	logging.Infof("daemon", "connected to %s %s", caps.Manufacturer, caps.Name)

	channels, err := storage.NewChannelStore(cfg.Storage.DatabasePath)
	if err != nil {
		session.Disconnect()
		cancel()
		return nil, err
	}

	daemon := &RigDaemon{
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		session:   session,
		channels:  channels,
		netServer: rigctld.NewServer(session),
		wsClients: make(map[chan statusSnapshot]struct{}),
	}

	daemon.setupWebServer()
	return daemon, nil
}

// Start launches the network listeners and the state poller
func (d *RigDaemon) Start() error {
	addr := fmt.Sprintf("%s:%d", d.config.Server.BindAddress, d.config.Server.RigctldPort)
	if err := d.netServer.Listen(addr); err != nil {
		return err
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		logging.Infof("daemon", "starting web server on %s", d.webServer.Addr)
		if err := d.webServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Errorf("daemon", "web server error: %v", err)
		}
	}()

	d.wg.Add(1)
	go d.statePoller()

	return nil
}

// Stop shuts everything down gracefully
func (d *RigDaemon) Stop() error {
	d.cancel()

	if d.webServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.webServer.Shutdown(ctx); err != nil {
			logging.Errorf("daemon", "web server shutdown error: %v", err)
		}
	}

	if err := d.netServer.Close(); err != nil {
		logging.Errorf("daemon", "rigctld shutdown error: %v", err)
	}

	d.wg.Wait()

	if err := d.channels.Close(); err != nil {
		logging.Errorf("daemon", "channel store close error: %v", err)
	}
	return d.session.Disconnect()
}

// setupWebServer initializes the HTTP API routes
func (d *RigDaemon) setupWebServer() {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api/v1")
	{
		api.GET("/status", d.handleGetStatus)
		api.GET("/frequency", d.handleGetFrequency)
		api.PUT("/frequency", d.handleSetFrequency)
		api.GET("/mode", d.handleGetMode)
		api.PUT("/mode", d.handleSetMode)
		api.PUT("/ptt", d.handleSetPTT)
		api.POST("/configure", d.handleConfigure)
		api.GET("/channels", d.handleListChannels)
		api.PUT("/channels/:number", d.handleSaveChannel)
		api.POST("/channels/:number/recall", d.handleRecallChannel)
		api.DELETE("/channels/:number", d.handleDeleteChannel)
		api.GET("/ws", d.handleStateStream)
	}

	d.webServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", d.config.Server.BindAddress, d.config.Server.HTTPPort),
		Handler: router,
	}
}

// statePoller periodically samples rig state and fans it out to
// websocket subscribers. Cache TTLs keep this from hammering the
// serial channel.
func (d *RigDaemon) statePoller() {
	defer d.wg.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.wsMutex.Lock()
			n := len(d.wsClients)
			d.wsMutex.Unlock()
			if n == 0 {
				continue
			}

			snap := d.snapshot()
			d.wsMutex.Lock()
			for ch := range d.wsClients {
				select {
				case ch <- snap:
				default: // slow subscriber, drop the update
				}
			}
			d.wsMutex.Unlock()
		}
	}
}

func (d *RigDaemon) snapshot() statusSnapshot {
	snap := statusSnapshot{
		Model: d.session.Capabilities().ModelID,
		State: string(d.session.State()),
		VFO:   string(d.session.ActiveVFO()),
	}
	if hz, err := d.session.GetFrequency(d.session.ActiveVFO()); err == nil {
		snap.Frequency = hz
	}
	if mode, err := d.session.GetMode(); err == nil {
		snap.Mode = string(mode)
	}
	if ptt, err := d.session.GetPTT(); err == nil {
		snap.PTT = ptt
	}
	return snap
}
