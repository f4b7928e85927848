package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dougsko/rigd/pkg/controller"
	"github.com/dougsko/rigd/pkg/logging"
	"github.com/dougsko/rigd/pkg/rig"
	"github.com/dougsko/rigd/pkg/storage"
)

// statusSnapshot is the wire form of the rig state pushed to websocket
// clients and returned from /api/v1/status
type statusSnapshot struct {
	Model     string `json:"model"`
	State     string `json:"state"`
	VFO       string `json:"vfo"`
	Frequency int64  `json:"frequency"`
	Mode      string `json:"mode"`
	PTT       bool   `json:"ptt"`
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the daemon binds to localhost by default; cross-origin checks
	// are left to a fronting proxy
	CheckOrigin: func(r *http.Request) bool { return true },
}

func apiError(c *gin.Context, err error) {
	code := http.StatusBadGateway
	if _, ok := err.(*rig.CapabilityError); ok {
		code = http.StatusUnprocessableEntity
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func (d *RigDaemon) handleGetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, d.snapshot())
}

func (d *RigDaemon) handleGetFrequency(c *gin.Context) {
	vfo := d.session.ActiveVFO()
	if v := c.Query("vfo"); v != "" {
		vfo = rig.VFO(v)
	}
	hz, err := d.session.GetFrequency(vfo)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vfo": vfo, "frequency": hz})
}

func (d *RigDaemon) handleSetFrequency(c *gin.Context) {
	var req struct {
		VFO       string `json:"vfo"`
		Frequency int64  `json:"frequency" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	vfo := d.session.ActiveVFO()
	if req.VFO != "" {
		vfo = rig.VFO(req.VFO)
	}
	if err := d.session.SetFrequency(vfo, req.Frequency); err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vfo": vfo, "frequency": req.Frequency})
}

func (d *RigDaemon) handleGetMode(c *gin.Context) {
	mode, err := d.session.GetMode()
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mode": mode})
}

func (d *RigDaemon) handleSetMode(c *gin.Context) {
	var req struct {
		Mode string `json:"mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := d.session.SetMode(rig.Mode(req.Mode)); err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mode": req.Mode})
}

func (d *RigDaemon) handleSetPTT(c *gin.Context) {
	var req struct {
		PTT *bool `json:"ptt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := d.session.SetPTT(*req.PTT); err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ptt": *req.PTT})
}

// handleConfigure applies several parameter changes as one ordered
// batch and reports what committed
func (d *RigDaemon) handleConfigure(c *gin.Context) {
	var req struct {
		VFO       *string  `json:"vfo"`
		Mode      *string  `json:"mode"`
		Frequency *int64   `json:"frequency"`
		Split     *bool    `json:"split"`
		RIT       *int     `json:"rit"`
		Power     *float64 `json:"power"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var batch controller.BatchRequest
	if req.VFO != nil {
		v := rig.VFO(*req.VFO)
		batch.VFO = &v
	}
	if req.Mode != nil {
		m := rig.Mode(*req.Mode)
		batch.Mode = &m
	}
	batch.Frequency = req.Frequency
	batch.Split = req.Split
	batch.RIT = req.RIT
	batch.Power = req.Power

	result := d.session.Configure(batch)
	resp := gin.H{
		"applied": result.Applied,
		"skipped": result.Skipped,
	}
	if result.Err != nil {
		resp["failed"] = result.Failed
		resp["error"] = result.Err.Error()
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (d *RigDaemon) handleListChannels(c *gin.Context) {
	channels, err := d.channels.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if channels == nil {
		channels = []storage.Channel{}
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

// handleSaveChannel stores the current rig state, or an explicit
// frequency/mode from the body, under the given channel number
func (d *RigDaemon) handleSaveChannel(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel number"})
		return
	}

	var req struct {
		Name      string `json:"name"`
		Frequency *int64 `json:"frequency"`
		Mode      string `json:"mode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ch := storage.Channel{
		Number: number,
		Name:   req.Name,
		VFO:    d.session.ActiveVFO(),
	}
	if req.Frequency != nil {
		ch.Frequency = *req.Frequency
	} else {
		hz, err := d.session.GetFrequency(d.session.ActiveVFO())
		if err != nil {
			apiError(c, err)
			return
		}
		ch.Frequency = hz
	}
	if req.Mode != "" {
		ch.Mode = rig.Mode(req.Mode)
	} else {
		mode, err := d.session.GetMode()
		if err != nil {
			apiError(c, err)
			return
		}
		ch.Mode = mode
	}

	if err := d.channels.Save(ch); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ch)
}

// handleRecallChannel tunes the rig to a stored preset via the batch
// optimizer so mode changes land before the frequency write
func (d *RigDaemon) handleRecallChannel(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel number"})
		return
	}
	ch, err := d.channels.Get(number)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	result := d.session.Configure(controller.BatchRequest{
		VFO:       &ch.VFO,
		Mode:      &ch.Mode,
		Frequency: &ch.Frequency,
	})
	if result.Err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   result.Err.Error(),
			"failed":  result.Failed,
			"applied": result.Applied,
		})
		return
	}
	c.JSON(http.StatusOK, ch)
}

func (d *RigDaemon) handleDeleteChannel(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel number"})
		return
	}
	if err := d.channels.Delete(number); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": number})
}

// handleStateStream upgrades to a websocket and pushes periodic state
// snapshots until the client disconnects
func (d *RigDaemon) handleStateStream(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Errorf("web", "websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates := make(chan statusSnapshot, 4)
	d.wsMutex.Lock()
	d.wsClients[updates] = struct{}{}
	d.wsMutex.Unlock()
	defer func() {
		d.wsMutex.Lock()
		delete(d.wsClients, updates)
		d.wsMutex.Unlock()
	}()

	// drain reads so close frames are processed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(d.snapshot()); err != nil {
		return
	}
	for {
		select {
		case <-d.ctx.Done():
			return
		case <-done:
			return
		case snap := <-updates:
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		}
	}
}
