package detect

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/behold-mycode/komari/bridge"
	"github.com/behold-mycode/komari/game"
	"github.com/behold-mycode/komari/kerror"
	"github.com/behold-mycode/komari/minimap"
	"github.com/behold-mycode/komari/pathing"
)

const (
	rpcCallTimeout      = 50 * time.Millisecond
	rpcRedialCooldown   = 2 * time.Second
	rpcHandshakeTimeout = 3 * time.Second
)

var errNotConnected = kerror.New("detection service not connected")

// rpcRequest is the wire format of one detection query.
type rpcRequest struct {
	Query       string             `json:"query"`
	BBox        *game.Rect         `json:"bbox,omitempty"`
	Calibrating *ArrowsCalibrating `json:"calibrating,omitempty"`
	Rarity      *FamiliarRarity    `json:"rarity,omitempty"`
}

// rpcResponse is the union of all query answers; each query fills the fields
// it is about.
type rpcResponse struct {
	OK          bool               `json:"ok"`
	Error       string             `json:"error,omitempty"`
	Point       *game.Point        `json:"point,omitempty"`
	Flag        bool               `json:"flag"`
	Rects       []game.Rect        `json:"rects,omitempty"`
	Slots       []FamiliarSlot     `json:"slots,omitempty"`
	Keys        []string           `json:"keys,omitempty"`
	Calibrating *ArrowsCalibrating `json:"calibrating,omitempty"`
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	Minimap     *rpcMinimap        `json:"minimap,omitempty"`
}

type rpcMinimap struct {
	BBox                 game.Rect          `json:"bbox"`
	PartiallyOverlapping bool               `json:"partiallyOverlapping"`
	Portals              []game.Rect        `json:"portals"`
	Platforms            []pathing.Platform `json:"platforms"`
	RunePos              *game.Point        `json:"runePos,omitempty"`
	OtherPlayers         int                `json:"otherPlayers"`
}

// RPCClient answers detection queries over a websocket to the external
// computer-vision service, which keeps the latest captured frame and
// responds from its cache. A broken connection degrades every query to "not
// detected" and redials with a cooldown.
type RPCClient struct {
	log *logrus.Entry
	url string

	mu       sync.Mutex
	conn     *websocket.Conn
	lastDial time.Time
}

var _ Detector = (*RPCClient)(nil)

// NewRPCClient creates a client dialing the given websocket URL lazily on
// first use.
func NewRPCClient(log *logrus.Logger, url string) *RPCClient {
	return &RPCClient{
		log: log.WithField("detect", "rpc"),
		url: url,
	}
}

// Minimap fetches the current minimap classification, or a detecting
// minimap when the service is unreachable.
func (c *RPCClient) Minimap() minimap.Minimap {
	var resp rpcResponse
	if err := c.call(rpcRequest{Query: "minimap"}, &resp); err != nil || resp.Minimap == nil {
		return minimap.Detecting()
	}
	m := resp.Minimap
	return minimap.Minimap{Idle: &minimap.Idle{
		BBox:                 m.BBox,
		PartiallyOverlapping: m.PartiallyOverlapping,
		Portals:              m.Portals,
		Platforms:            m.Platforms,
		RunePos:              m.RunePos,
		OtherPlayers:         m.OtherPlayers,
	}}
}

func (c *RPCClient) DetectPlayer(minimapBBox game.Rect) (game.Point, bool) {
	var resp rpcResponse
	if err := c.call(rpcRequest{Query: "player", BBox: &minimapBBox}, &resp); err != nil || resp.Point == nil {
		return game.Point{}, false
	}
	return *resp.Point, true
}

func (c *RPCClient) DetectRuneArrows(calibrating ArrowsCalibrating) (ArrowsResult, error) {
	var resp rpcResponse
	if err := c.call(rpcRequest{Query: "rune_arrows", Calibrating: &calibrating}, &resp); err != nil {
		return ArrowsResult{}, err
	}
	if resp.Error != "" {
		return ArrowsResult{}, kerror.New("rune arrows: %s", resp.Error)
	}
	result := ArrowsResult{Calibrating: calibrating}
	if resp.Calibrating != nil {
		result.Calibrating = *resp.Calibrating
	}
	if len(resp.Keys) == len(result.Keys) {
		for i, name := range resp.Keys {
			key, ok := bridge.ParseKey(name)
			if !ok {
				return ArrowsResult{}, kerror.New("rune arrows: unknown key %q", name)
			}
			result.Keys[i] = key
		}
		result.Complete = true
	}
	return result, nil
}

func (c *RPCClient) DetectESCSettings() bool       { return c.flag("esc_settings") }
func (c *RPCClient) DetectPlayerInCashShop() bool  { return c.flag("in_cash_shop") }
func (c *RPCClient) DetectChangeChannelMenu() bool { return c.flag("change_channel_menu") }
func (c *RPCClient) DetectGuideMenu() bool         { return c.flag("guide_menu") }
func (c *RPCClient) DetectFamiliarMenu() bool      { return c.flag("familiar_menu") }

func (c *RPCClient) DetectGuideTowns() []game.Rect {
	var resp rpcResponse
	if err := c.call(rpcRequest{Query: "guide_towns"}, &resp); err != nil {
		return nil
	}
	return resp.Rects
}

func (c *RPCClient) DetectFamiliarSlots() []FamiliarSlot {
	var resp rpcResponse
	if err := c.call(rpcRequest{Query: "familiar_slots"}, &resp); err != nil {
		return nil
	}
	return resp.Slots
}

func (c *RPCClient) DetectFamiliarCards(rarity FamiliarRarity) []game.Rect {
	var resp rpcResponse
	if err := c.call(rpcRequest{Query: "familiar_cards", Rarity: &rarity}, &resp); err != nil {
		return nil
	}
	return resp.Rects
}

func (c *RPCClient) DetectFamiliarSaveButton() (game.Rect, bool) {
	var resp rpcResponse
	if err := c.call(rpcRequest{Query: "familiar_save"}, &resp); err != nil || len(resp.Rects) == 0 {
		return game.Rect{}, false
	}
	return resp.Rects[0], true
}

func (c *RPCClient) FrameSize() (int, int) {
	var resp rpcResponse
	if err := c.call(rpcRequest{Query: "frame_size"}, &resp); err != nil {
		return 0, 0
	}
	return resp.Width, resp.Height
}

// Close tears down the connection.
func (c *RPCClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

func (c *RPCClient) flag(query string) bool {
	var resp rpcResponse
	if err := c.call(rpcRequest{Query: query}, &resp); err != nil {
		return false
	}
	return resp.Flag
}

func (c *RPCClient) call(req rpcRequest, resp *rpcResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if time.Since(c.lastDial) < rpcRedialCooldown {
			return errNotConnected
		}
		c.lastDial = time.Now()
		dialer := websocket.Dialer{HandshakeTimeout: rpcHandshakeTimeout}
		conn, _, err := dialer.Dial(c.url, nil)
		if err != nil {
			c.log.WithError(err).Debug("detection dial failed")
			return err
		}
		c.conn = conn
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	deadline := time.Now().Add(rpcCallTimeout)
	_ = c.conn.SetWriteDeadline(deadline)
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return c.dropConn(err)
	}
	_ = c.conn.SetReadDeadline(deadline)
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return c.dropConn(err)
	}
	return json.Unmarshal(data, resp)
}

func (c *RPCClient) dropConn(err error) error {
	c.log.WithError(err).Debug("detection call failed, dropping connection")
	_ = c.conn.Close()
	c.conn = nil
	return err
}
