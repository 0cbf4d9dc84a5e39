package viewer

import (
	"log"
	"net/http"
	"time"

	"StockWatch/internal/model"
	"StockWatch/internal/render"
	"StockWatch/internal/sheet"

	"github.com/gin-gonic/gin"
)

// Server serves the dashboard of the alias workbook.
type Server struct {
	AliasPath  string
	Location   *time.Location
	OpenHour   int
	MarketName string
	Now        func() time.Time
}

// NewServer creates a Server reading the workbook at aliasPath.
func NewServer(aliasPath string, loc *time.Location, openHour int, market string) *Server {
	return &Server{
		AliasPath:  aliasPath,
		Location:   loc,
		OpenHour:   openHour,
		MarketName: market,
		Now:        time.Now,
	}
}

type rowView struct {
	model.Quote
	Style model.StyleTag `json:"style"`
}

type snapshotView struct {
	NewStock     []rowView `json:"new_stock"`
	WatchedStock []rowView `json:"watched_stock"`
	MyStock      []rowView `json:"my_stock"`
	RefreshedAt  string    `json:"refreshed_at"`
	Timezone     string    `json:"timezone"`
}

// Router builds the gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/", s.dashboard)
	r.GET("/api/snapshot", s.snapshot)
	r.GET("/sys/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
	return r
}

func (s *Server) dashboard(c *gin.Context) {
	grids, err := sheet.ReadStyled(s.AliasPath, render.DashboardSheets...)
	if err != nil {
		log.Printf("[ERROR] read %s: %v", s.AliasPath, err)
		c.String(http.StatusInternalServerError, "snapshot unavailable: %v", err)
		return
	}
	status := render.MarketStatus(s.Now(), s.Location, s.OpenHour, s.MarketName)
	page, err := render.Dashboard(grids, status)
	if err != nil {
		log.Printf("[ERROR] render dashboard: %v", err)
		c.String(http.StatusInternalServerError, "render failed: %v", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func (s *Server) snapshot(c *gin.Context) {
	snap, err := sheet.ReadSnapshot(s.AliasPath)
	if err != nil {
		log.Printf("[ERROR] read %s: %v", s.AliasPath, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshotView{
		NewStock:     rows(snap.NewStock),
		WatchedStock: rows(snap.WatchedStock),
		MyStock:      rows(snap.MyStock),
		RefreshedAt:  snap.RefreshedAt,
		Timezone:     snap.Timezone,
	})
}

func rows(quotes []model.Quote) []rowView {
	out := make([]rowView, len(quotes))
	for i, q := range quotes {
		out[i] = rowView{Quote: q, Style: model.StyleOf(q)}
	}
	return out
}
