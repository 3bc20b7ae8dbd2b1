// Package catalog holds the static reference data: game titles with their
// category and artwork, and the venues games are hosted at.
package catalog

import "fmt"

// FallbackTitle names the entry used for titles absent from the catalog.
const FallbackTitle = "Other"

// MaxPlayers is the largest capacity the host form offers.
const MaxPlayers = 15

// Game is the display data attached to a game title.
type Game struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	Image string `json:"image"`
}

// Location is a venue where game nights are hosted.
type Location struct {
	Name string `json:"name"`
	City string `json:"city"`
}

// String renders the location the way events store it.
func (l Location) String() string {
	return fmt.Sprintf("%s, %s", l.Name, l.City)
}

var games = []Game{
	{Title: "Catan", Type: "Strategy", Image: "https://cf.geekdo-images.com/k7rnzcs13v8_yTCUbi0bpA__imagepagezoom/img/Zpl0tsMKKK6qf9KEgcImibREbRc=/fit-in/1200x900/filters:no_upscale():strip_icc()/pic9167696.jpg"},
	{Title: "Ticket to Ride", Type: "Family", Image: "https://cf.geekdo-images.com/WsbV-GJAd7eOMbD4ctZ5eg__imagepage/img/sgLUFaoXFUWluvJ9eg3wnrovJKA=/fit-in/900x600/filters:no_upscale():strip_icc()/pic8207260.jpg"},
	{Title: "Pandemic", Type: "Cooperative", Image: "https://cf.geekdo-images.com/ILt88N56KmUN-8FHiQBGWw__imagepage/img/TltYRXi5oKHH71LACkxK3WW_SpA=/fit-in/900x600/filters:no_upscale():strip_icc()/pic9260314.jpg"},
	{Title: "Gloomhaven", Type: "Adventure", Image: "https://cf.geekdo-images.com/eN0JadaUe9zCoTcsYRP7_Q__imagepage/img/wLmeHp5sGpcNhiJoYNhFZtwJQE4=/fit-in/900x600/filters:no_upscale():strip_icc()/pic7435038.jpg"},
	{Title: "Terraforming Mars", Type: "Strategy", Image: "https://cf.geekdo-images.com/cfMj7Kjrpr2CtSSpb_XJcQ__imagepage/img/ARx90tDBE4m7Pl2FrKbQeV7q3sQ=/fit-in/900x600/filters:no_upscale():strip_icc()/pic3125635.jpg"},
	{Title: "Wingspan", Type: "Strategy", Image: "https://cf.geekdo-images.com/7DaVOVT_HMFhwCV59EpTag__imagepage/img/_GiMHovi7oSymwwnKTAM3dJqs1A=/fit-in/900x600/filters:no_upscale():strip_icc()/pic8682319.jpg"},
	{Title: "Azul", Type: "Abstract", Image: "https://cf.geekdo-images.com/WofD8m9Pm2WkpM1YmQTw1g__imagepage/img/mTF-4rK-SGALl6X3TgXlmrgWj9g=/fit-in/900x600/filters:no_upscale():strip_icc()/pic8964823.jpg"},
	{Title: "7 Wonders", Type: "Strategy", Image: "https://cf.geekdo-images.com/Co89UY5sIfCt1GUciHgg5Q__imagepage/img/zJsI2mXddiE5MEyzHblI6H92V04=/fit-in/900x600/filters:no_upscale():strip_icc()/pic5914184.jpg"},
	{Title: "Codenames", Type: "Party", Image: "https://cf.geekdo-images.com/Co89UY5sIfCt1GUciHgg5Q__imagepage/img/zJsI2mXddiE5MEyzHblI6H92V04=/fit-in/900x600/filters:no_upscale():strip_icc()/pic5914184.jpg"},
	{Title: "Betrayal at House on the Hill", Type: "Horror", Image: "https://cf.geekdo-images.com/r8s0JKqj7HKX7sTTUNN86A__imagepage/img/5o_4cu6aj_9dcp_eQ0o1iD5cjzo=/fit-in/900x600/filters:no_upscale():strip_icc()/pic8818265.jpg"},
	{Title: "Arkham Horror", Type: "Horror", Image: "https://cf.geekdo-images.com/AxGx2f9fhs91xbkF2BsXMQ__imagepage/img/EBSXLQQ6P-pVNRqMrixAjyMpj2A=/fit-in/900x600/filters:no_upscale():strip_icc()/pic7160236.jpg"},
	{Title: "Dominion", Type: "Deck-Building", Image: "https://cf.geekdo-images.com/g7thzJ1sMl8jiGyTaG_0Ag__imagepage/img/8C_yNpVJQGz3XxBwRWMXAd7-rDw=/fit-in/900x600/filters:no_upscale():strip_icc()/pic8830063.jpg"},
	{Title: "Splendor", Type: "Strategy", Image: "https://cf.geekdo-images.com/NxzccXghMydfCXafcVbp2w__imagepage/img/NGEBdfuVZaXbehlMiQ9yCwo7iRs=/fit-in/900x600/filters:no_upscale():strip_icc()/pic2414647.jpg"},
	{Title: "Coup", Type: "Social", Image: "https://cf.geekdo-images.com/wvoj5NBuLXAXUOBQR6m8bg__imagepage/img/O3WJl46TFq1cAuORt8ImDC399NA=/fit-in/900x600/filters:no_upscale():strip_icc()/pic1759020.jpg"},
	{Title: "Blood on the Clocktower", Type: "Social", Image: "https://cf.geekdo-images.com/vgBgcfJ_0xU82YpZIhuyKQ__imagepage/img/XzlA3ulZlTEPG5LgxsUNxlyfn8E=/fit-in/900x600/filters:no_upscale():strip_icc()/pic6907419.jpg"},
	{Title: "D&D", Type: "RPG", Image: "https://static0.cbrimages.com/wordpress/wp-content/uploads/2025/03/2014-and-the-2024-5e-player-s-handbooks-for-dungeons-dragons-1.jpg?w=1200&h=675&fit=crop"},
	{Title: "Pathfinder", Type: "RPG", Image: "https://cf.geekdo-images.com/vr8by1Pt1TPCZ__5dFgTUA__imagepage/img/rFxUk80cFP61C1bquVG-BKnvy8Y=/fit-in/900x600/filters:no_upscale():strip_icc()/pic9401852.jpg"},
	{Title: "Root", Type: "Strategy", Image: "https://cf.geekdo-images.com/tt_ahIo9S2-9ngI5j5aXAg__imagepagezoom/img/oq7-5ELqinHzVcZmiCswsaPQeLE=/fit-in/1200x900/filters:no_upscale():strip_icc()/pic5464709.jpg"},
	{Title: "Scythe", Type: "Strategy", Image: "https://cf.geekdo-images.com/hyqVOyVvyUAVu3PmlP9scg__imagepage/img/-UKJcRC6XhCjZ7JzC6u7m9JRq88=/fit-in/900x600/filters:no_upscale():strip_icc()/pic2977400.jpg"},
	{Title: "Viticulture", Type: "Strategy", Image: "https://cf.geekdo-images.com/lJOVB2pGoyghH4aJga3bDQ__imagepage/img/FNp92ppE7RjOKAzOnNFLkHWmPjY=/fit-in/900x600/filters:no_upscale():strip_icc()/pic2869853.jpg"},
	{Title: "Other", Type: "Board Game", Image: "https://assets.bigcartel.com/product_images/155538709/Main-picture-mystery-box.jpg?auto=format&fit=max&h=1000&w=1000"},
}

var byTitle = func() map[string]Game {
	m := make(map[string]Game, len(games))
	for _, g := range games {
		m[g.Title] = g
	}
	return m
}()

// Locations lists the venues offered by the host form, in display order.
var Locations = []Location{
	{Name: "Guardian Games", City: "Kennewick"},
	{Name: "Tri Cities Gaming LLC", City: "Kennewick"},
	{Name: "The Collectors Corner", City: "Kennewick"},
	{Name: "Adventures Underground", City: "Richland"},
	{Name: "Vault 509 Trading Card Shop", City: "Richland"},
	{Name: "Sunken Treasures Games", City: "Richland"},
	{Name: "Caterpillar Cafe", City: "Richland"},
	{Name: "Richland Public Library", City: "Richland"},
	{Name: "Mid-Columbia Libraries - Kennewick Branch", City: "Kennewick"},
	{Name: "Mid-Columbia Libraries - West Pasco Branch", City: "West Pasco"},
	{Name: "Mid-Columbia Libraries - West Richland Branch", City: "West Richland"},
	{Name: "Mid-Columbia Libraries - Pasco Branch", City: "Pasco"},
	{Name: "Mid-Columbia Libraries - Keewaydin Park Branch", City: "Kennewick"},
}

// Games returns every catalog entry in catalog order, fallback included.
func Games() []Game {
	out := make([]Game, len(games))
	copy(out, games)
	return out
}

// Titles returns the selectable game titles in catalog order.
func Titles() []string {
	titles := make([]string, 0, len(games))
	for _, g := range games {
		titles = append(titles, g.Title)
	}
	return titles
}

// Lookup returns the catalog entry for title, or the fallback entry when
// the title is unknown. The returned Title is always the requested one.
func Lookup(title string) Game {
	g, ok := byTitle[title]
	if !ok {
		g = byTitle[FallbackTitle]
	}
	g.Title = title
	return g
}

// PlayerOptions returns the capacities offered by the host form.
func PlayerOptions() []int {
	opts := make([]int, MaxPlayers)
	for i := range opts {
		opts[i] = i + 1
	}
	return opts
}
