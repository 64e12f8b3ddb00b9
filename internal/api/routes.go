// Package api is the HTTP+WebSocket front door (§1, §10.4) standing in
// for the outward Electrum wire protocol: a gin router over the query
// surface (C8) plus a gorilla/websocket Hub pushing touched-scripthash
// notifications.
//
// Adapted from the teacher's internal/api/routes.go: same route-group
// and CORS-middleware layout, serving scripthash balance/UTXO/asset/
// transaction-summary queries instead of CoinJoin forensics lookups.
package api

import (
	"encoding/hex"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/moontreeapp/electrumx-evr/internal/mempool"
	"github.com/moontreeapp/electrumx-evr/internal/mempooltypes"
)

// Handler serves the query surface over HTTP.
type Handler struct {
	core *mempool.Core
	hub  *Hub
}

// SetupRouter builds the gin engine: CORS middleware, the scripthash
// query-surface routes, the fee histogram, asset metadata lookups, the
// websocket subscription endpoint, and /healthz.
func SetupRouter(core *mempool.Core, hub *Hub) *gin.Engine {
	r := gin.Default()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	h := &Handler{core: core, hub: hub}

	r.GET("/healthz", h.handleHealthz)
	r.GET("/ws", hub.Subscribe)

	v1 := r.Group("/api/v1")
	{
		sh := v1.Group("/scripthash/:sh")
		sh.GET("/balance", h.handleBalance)
		sh.GET("/assets/balance", h.handleAssetBalance)
		sh.GET("/spends", h.handleSpends)
		sh.GET("/transactions", h.handleTransactions)
		sh.GET("/utxos", h.handleUTXOs)
		sh.GET("/asset-utxos", h.handleAssetUTXOs)

		v1.GET("/fee-histogram", h.handleFeeHistogram)
		v1.GET("/asset/:name/creation", h.handleAssetCreation)
		v1.GET("/asset/:name/reissuance", h.handleAssetReissuance)
	}

	return r
}

func parseScriptHash(c *gin.Context) (mempooltypes.ScriptHash, bool) {
	raw, err := hex.DecodeString(c.Param("sh"))
	if err != nil || len(raw) != 32 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scripthash"})
		return mempooltypes.ScriptHash{}, false
	}
	var sh mempooltypes.ScriptHash
	copy(sh[:], raw)
	return sh, true
}

func (h *Handler) handleHealthz(c *gin.Context) {
	if !h.hub.Synced() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) handleBalance(c *gin.Context) {
	sh, ok := parseScriptHash(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": h.core.BalanceDelta(sh)})
}

func (h *Handler) handleAssetBalance(c *gin.Context) {
	sh, ok := parseScriptHash(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.core.AssetBalanceDelta(sh))
}

func (h *Handler) handleSpends(c *gin.Context) {
	sh, ok := parseScriptHash(c)
	if !ok {
		return
	}
	spends := h.core.PotentialSpends(sh)
	out := make([]gin.H, len(spends))
	for i, p := range spends {
		out[i] = gin.H{"tx_hash": p.Hash.String(), "index": p.Index}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) handleTransactions(c *gin.Context) {
	sh, ok := parseScriptHash(c)
	if !ok {
		return
	}
	summaries := h.core.TransactionSummaries(sh)
	out := make([]gin.H, len(summaries))
	for i, s := range summaries {
		out[i] = gin.H{
			"tx_hash":                s.Hash.String(),
			"fee":                    s.Fee,
			"has_unconfirmed_inputs": s.HasUnconfirmedInputs,
		}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) handleUTXOs(c *gin.Context) {
	sh, ok := parseScriptHash(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.core.UnorderedUTXOs(sh))
}

func (h *Handler) handleAssetUTXOs(c *gin.Context) {
	sh, ok := parseScriptHash(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.core.UnorderedAssets(sh))
}

func (h *Handler) handleFeeHistogram(c *gin.Context) {
	c.JSON(http.StatusOK, h.core.CompactFeeHistogram())
}

func (h *Handler) handleAssetCreation(c *gin.Context) {
	name := c.Param("name")
	issuance, ok := h.core.AssetCreation(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no mempool creation for asset"})
		return
	}
	c.JSON(http.StatusOK, issuance)
}

func (h *Handler) handleAssetReissuance(c *gin.Context) {
	name := c.Param("name")
	issuance, ok := h.core.AssetReissuance(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no mempool reissuance for asset"})
		return
	}
	c.JSON(http.StatusOK, issuance)
}

