package termmap

import (
	"image"
	"math"
	"strings"
	"time"

	"midnightscout/internal/cartography"
	"midnightscout/internal/tiles"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
)

const (
	halfBlock     = "▀"
	markerGlyph   = '●'
	selectedGlyph = '◉'
	haloGlyph     = '◦'

	popupMaxWidth = 36
	popupMaxBody  = 4
)

// cell is one terminal character: either two raster pixels or a glyph.
type cell struct {
	top    string
	bottom string
	glyph  rune
	fg     string
	bg     string
	bold   bool
}

type grid struct {
	w, h  int
	cells []cell
}

func newGrid(w, h int) *grid {
	return &grid{w: w, h: h, cells: make([]cell, w*h)}
}

func (g *grid) at(col, row int) *cell {
	if col < 0 || row < 0 || col >= g.w || row >= g.h {
		return nil
	}
	return &g.cells[row*g.w+col]
}

func (g *grid) put(col, row int, r rune, fg, bg string, bold bool) {
	c := g.at(col, row)
	if c == nil {
		return
	}
	if bg == "" {
		bg = c.top
	}
	c.glyph, c.fg, c.bg, c.bold = r, fg, bg, bold
}

func (g *grid) text(col, row int, s, fg, bg string, bold bool) {
	for _, r := range s {
		g.put(col, row, r, fg, bg, bold)
		col += max(runewidth.RuneWidth(r), 1)
	}
}

// Render draws the pane.
func (e *Engine) Render() string {
	g := newGrid(e.width, e.height)
	if !e.created {
		e.fill(g, e.palette.Background)
		return e.encode(g)
	}

	now := e.now()
	cam := e.current()
	e.drawBasemap(g, cam)
	e.drawMarkers(g, cam, now)
	e.drawPopup(g, cam)
	e.drawControl(g)
	e.drawAttribution(g)
	return e.encode(g)
}

func (e *Engine) fill(g *grid, hex string) {
	for i := range g.cells {
		g.cells[i].top, g.cells[i].bottom = hex, hex
	}
}

func (e *Engine) drawBasemap(g *grid, cam camera) {
	if e.layer == nil || e.source == nil {
		e.fill(g, e.palette.Background)
		return
	}
	s := e.sampler(cam)
	for row := 0; row < g.h; row++ {
		for col := 0; col < g.w; col++ {
			c := g.at(col, row)
			c.top = s.color(col, 2*row)
			c.bottom = s.color(col, 2*row+1)
		}
	}
}

// sampler maps raster pixels to basemap colors for one frame.
type sampler struct {
	e      *Engine
	cam    camera
	ws     float64
	tz     int
	factor float64
	seen   map[tiles.Coord]image.Image
	memo   map[image.Image]map[image.Point]string
}

func (e *Engine) sampler(cam camera) *sampler {
	tz := e.tileZoom(cam)
	return &sampler{
		e:      e,
		cam:    cam,
		ws:     worldSize(cam.Zoom),
		tz:     tz,
		factor: math.Exp2(float64(tz) - cam.Zoom),
		seen:   make(map[tiles.Coord]image.Image),
		memo:   make(map[image.Image]map[image.Point]string),
	}
}

func (s *sampler) color(px, py int) string {
	e := s.e
	wx := s.cam.Center.X*s.ws + (float64(px)+0.5-float64(e.width)/2)*e.pixelScale
	wy := s.cam.Center.Y*s.ws + (float64(py)+0.5-float64(e.height))*e.pixelScale
	if wy < 0 || wy >= s.ws {
		return e.palette.Background
	}

	tx, ty := wx*s.factor, wy*s.factor
	fx, fy := math.Floor(tx/tiles.TileSize), math.Floor(ty/tiles.TileSize)
	coord := tiles.Coord{Z: s.tz, X: int(fx), Y: int(fy)}.Wrap()

	img, ok := s.seen[coord]
	if !ok {
		img, _ = e.source.Tile(coord)
		s.seen[coord] = img
	}
	if img == nil {
		return e.palette.Background
	}

	b := img.Bounds()
	ix := b.Min.X + int((tx/tiles.TileSize-fx)*float64(b.Dx()))
	iy := b.Min.Y + int((ty/tiles.TileSize-fy)*float64(b.Dy()))
	at := image.Point{X: min(ix, b.Max.X-1), Y: min(iy, b.Max.Y-1)}

	memo := s.memo[img]
	if memo == nil {
		memo = make(map[image.Point]string)
		s.memo[img] = memo
	}
	if hex, ok := memo[at]; ok {
		return hex
	}
	c, ok := colorful.MakeColor(img.At(at.X, at.Y))
	if !ok {
		return e.palette.Background
	}
	hex := c.Hex()
	memo[at] = hex
	return hex
}

func (e *Engine) drawMarkers(g *grid, cam camera, now time.Time) {
	pulse := e.pulseOn(now)
	var lifted []*marker
	for _, id := range e.order {
		m := e.markers[id]
		if m.Icon.Highlighted {
			lifted = append(lifted, m)
			continue
		}
		col, row := e.cellOf(cam, m.at)
		g.put(col, row, markerGlyph, e.palette.Marker, "", false)
	}
	// Highlighted markers sit on top of the rest.
	for _, m := range lifted {
		col, row := e.cellOf(cam, m.at)
		if m.Icon.Pulse && pulse {
			g.put(col-1, row, haloGlyph, e.palette.Halo, "", false)
			g.put(col+1, row, haloGlyph, e.palette.Halo, "", false)
		}
		g.put(col, row, selectedGlyph, e.palette.Highlight, "", true)
	}
}

func (e *Engine) popupLines(width int) (title, rating string, body []string) {
	m := e.markers[e.popup]
	p := m.Popup
	title = runewidth.Truncate(p.Title, width, "…")
	rating = runewidth.Truncate(strings.TrimSpace(p.Stars+" "+p.Rating), width, "…")
	if p.Body != "" {
		for _, l := range strings.Split(wordwrap.String(p.Body, width), "\n") {
			body = append(body, runewidth.Truncate(l, width, "…"))
		}
	}
	if len(body) > popupMaxBody {
		body = body[:popupMaxBody]
		body[popupMaxBody-1] = runewidth.Truncate(body[popupMaxBody-1]+"…", width, "…")
	}
	return title, rating, body
}

func (e *Engine) drawPopup(g *grid, cam camera) {
	m, ok := e.markers[e.popup]
	if !ok {
		return
	}
	mc, mr := e.cellOf(cam, m.at)
	if mc < 0 || mc >= g.w || mr < 0 || mr >= g.h {
		return
	}

	inner := min(popupMaxWidth, g.w-4)
	if inner < 4 {
		return
	}
	title, rating, body := e.popupLines(inner)
	content := 2 + len(body)
	if len(body) > 0 {
		content++ // spacer
	}
	boxW, boxH := inner+4, content+2

	left := max(0, min(mc-boxW/2, g.w-boxW))
	top := mr - boxH
	if top < 0 {
		top = mr + 1
	}

	p := e.palette
	border := func(col, row int, r rune) { g.put(col, row, r, p.PanelBorder, p.Panel, false) }
	for row := top; row < top+boxH; row++ {
		for col := left; col < left+boxW; col++ {
			g.put(col, row, ' ', p.Text, p.Panel, false)
		}
	}
	for col := left + 1; col < left+boxW-1; col++ {
		border(col, top, '─')
		border(col, top+boxH-1, '─')
	}
	for row := top + 1; row < top+boxH-1; row++ {
		border(left, row, '│')
		border(left+boxW-1, row, '│')
	}
	border(left, top, '╭')
	border(left+boxW-1, top, '╮')
	border(left, top+boxH-1, '╰')
	border(left+boxW-1, top+boxH-1, '╯')
	if top < mr {
		border(mc, top+boxH-1, '┬')
	}

	row := top + 1
	g.text(left+2, row, title, p.Text, p.Panel, true)
	row++
	g.text(left+2, row, rating, p.Highlight, p.Panel, false)
	row += 2
	for _, l := range body {
		g.text(left+2, row, l, p.Muted, p.Panel, false)
		row++
	}
}

// controlRows returns the rows of the [+] and [-] buttons and their column.
func (e *Engine) controlRows() (plus, minus, col int, ok bool) {
	if e.control == "" || e.width < 5 || e.height < 3 {
		return 0, 0, 0, false
	}
	bottom := e.height - 1
	if e.attribution {
		bottom--
	}
	switch e.control {
	case cartography.TopLeft, cartography.TopRight:
		plus, minus = 0, 1
	default:
		plus, minus = bottom-1, bottom
	}
	switch e.control {
	case cartography.TopRight, cartography.BottomRight:
		col = e.width - 4
	default:
		col = 1
	}
	return plus, minus, col, plus >= 0
}

// controlAt maps a cell to a zoom delta if it is on the zoom control.
func (e *Engine) controlAt(col, row int) (float64, bool) {
	plus, minus, c, ok := e.controlRows()
	if !ok || col < c || col > c+2 {
		return 0, false
	}
	switch row {
	case plus:
		return 1, true
	case minus:
		return -1, true
	}
	return 0, false
}

func (e *Engine) drawControl(g *grid) {
	plus, minus, col, ok := e.controlRows()
	if !ok {
		return
	}
	p := e.palette
	g.text(col, plus, "[+]", p.Text, p.Panel, true)
	g.text(col, minus, "[-]", p.Text, p.Panel, true)
}

func (e *Engine) drawAttribution(g *grid) {
	if !e.attribution || e.layer == nil || e.layer.Attribution == "" {
		return
	}
	text := runewidth.Truncate(e.layer.Attribution, g.w, "…")
	col := g.w - runewidth.StringWidth(text)
	g.text(col, g.h-1, text, e.palette.Muted, e.palette.Panel, false)
}

// encode turns the grid into styled lines, merging runs of equal style.
func (e *Engine) encode(g *grid) string {
	var out strings.Builder
	for row := 0; row < g.h; row++ {
		if row > 0 {
			out.WriteByte('\n')
		}
		var (
			run    strings.Builder
			fg, bg string
			bold   bool
		)
		flush := func() {
			if run.Len() == 0 {
				return
			}
			s := e.profile.String(run.String()).
				Foreground(e.profile.Color(fg)).
				Background(e.profile.Color(bg))
			if bold {
				s = s.Bold()
			}
			out.WriteString(s.String())
			run.Reset()
		}
		for col := 0; col < g.w; col++ {
			c := g.at(col, row)
			glyph, cfg, cbg, cbold := halfBlock, c.top, c.bottom, false
			if c.glyph != 0 {
				glyph, cfg, cbg, cbold = string(c.glyph), c.fg, c.bg, c.bold
			}
			if run.Len() > 0 && (cfg != fg || cbg != bg || cbold != bold) {
				flush()
			}
			fg, bg, bold = cfg, cbg, cbold
			run.WriteString(glyph)
		}
		flush()
	}
	return out.String()
}
