package hullqin

import (
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/jose-valero/tabletop-rooms-bot/internal/domain"
)

// Todo lo frágil del DOM del sitio vive acá. Trabaja sobre el HTML ya
// renderizado por el navegador, así se puede testear con fixtures.

const (
	catalogContainerClass = "justify-center"
	ruleLinkText          = "查看规则"
	spectatingMarker      = "观战中"
	seatIDPrefix          = "userseat"
)

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, classes ...string) bool {
	raw, ok := attr(n, "class")
	if !ok {
		return false
	}
	have := strings.Fields(raw)
	for _, want := range classes {
		found := false
		for _, c := range have {
			if c == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func text(n *html.Node) string {
	var sb strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return sb.String()
}

// find devuelve, en orden de documento, los nodos que cumplen match.
func find(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(root)
	return out
}

func first(root *html.Node, match func(*html.Node) bool) *html.Node {
	if nodes := find(root, match); len(nodes) > 0 {
		return nodes[0]
	}
	return nil
}

func insideClass(n *html.Node, class string) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && hasClass(p, class) {
			return true
		}
	}
	return false
}

// slugFromHref: "/uno" -> "uno". También acepta links absolutos.
func slugFromHref(href string) string {
	path := href
	if u, err := url.Parse(href); err == nil {
		path = u.Path
	}
	return strings.ReplaceAll(path, "/", "")
}

// extractCatalog: anchors dentro del contenedor `.justify-center`. Devuelve
// también cuántos anchors se descartaron por no tener id o nombre.
func extractCatalog(doc *html.Node) ([]domain.GameDescriptor, int) {
	anchors := find(doc, func(n *html.Node) bool {
		return isElement(n, "a") && insideClass(n, catalogContainerClass)
	})
	games := make([]domain.GameDescriptor, 0, len(anchors))
	skipped := 0
	for _, a := range anchors {
		href, _ := attr(a, "href")
		id := slugFromHref(href)
		name := strings.TrimSpace(text(a))
		if id == "" || name == "" {
			skipped++
			continue
		}
		games = append(games, domain.GameDescriptor{GameName: name, GameID: id, RuleLink: domain.NoRuleLink})
	}
	return games, skipped
}

// extractRuleLink: primer <a> cuyo texto contiene "查看规则". Los links
// relativos se resuelven contra base.
func extractRuleLink(doc *html.Node, base string) (string, bool) {
	a := first(doc, func(n *html.Node) bool {
		return isElement(n, "a") && strings.Contains(text(n), ruleLinkText)
	})
	if a == nil {
		return "", false
	}
	href, ok := attr(a, "href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return "", false
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if !u.IsAbs() {
		b, err := url.Parse(base + "/")
		if err != nil {
			return "", false
		}
		u = b.ResolveReference(u)
	}
	return u.String(), true
}

// extractRoomID: último segmento del primer link que empieza con "/<game>/".
func extractRoomID(doc *html.Node, gameID string) (string, bool) {
	prefix := "/" + gameID + "/"
	a := first(doc, func(n *html.Node) bool {
		if !isElement(n, "a") {
			return false
		}
		href, _ := attr(n, "href")
		return strings.HasPrefix(href, prefix)
	})
	if a == nil {
		return "", false
	}
	href, _ := attr(a, "href")
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	parts := strings.Split(strings.TrimRight(href, "/"), "/")
	id := parts[len(parts)-1]
	if id == "" || id == gameID {
		return "", false
	}
	return id, true
}

// extractOccupancy: nil si la sala no está en estado de juego/espectador.
// Recorre #userseat0, #userseat1, ... hasta que falte uno.
func extractOccupancy(doc *html.Node, raw string) *domain.Occupancy {
	if !strings.Contains(raw, spectatingMarker) {
		return nil
	}

	seats := map[string]*html.Node{}
	for _, n := range find(doc, func(n *html.Node) bool {
		id, _ := attr(n, "id")
		return n.Type == html.ElementNode && strings.HasPrefix(id, seatIDPrefix)
	}) {
		id, _ := attr(n, "id")
		if _, dup := seats[id]; !dup {
			seats[id] = n
		}
	}

	occ := &domain.Occupancy{Players: []string{}}
	for i := 0; ; i++ {
		seat, ok := seats[seatIDPrefix+strconv.Itoa(i)]
		if !ok {
			occ.Total = i
			break
		}
		if name := first(seat, func(n *html.Node) bool {
			return isElement(n, "div") && hasClass(n, "text-2xl", "overflow-hidden")
		}); name != nil {
			occ.Players = append(occ.Players, strings.TrimSpace(text(name)))
			continue
		}
		if head := first(seat, func(n *html.Node) bool {
			return isElement(n, "div") && hasClass(n, "head-image")
		}); head != nil {
			occ.Players = append(occ.Players, domain.AnonymousPlayer)
		}
		// sin nombre ni avatar: asiento libre
	}
	occ.Current = len(occ.Players)
	return occ
}
