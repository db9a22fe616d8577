// Package schedule reads the league's statviewfeed schedule and turns it into
// the subject team's fixtures.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	jsoniter "github.com/json-iterator/go"

	"github.com/pfrederiksen/hockey-report/internal/game"
	"github.com/pfrederiksen/hockey-report/internal/scraper"
)

// DefaultFeedURL is the ECHL schedule feed for the 2025-26 season.
const DefaultFeedURL = "https://lscluster.hockeytech.com/feed/index.php?feed=statviewfeed&view=schedule&team=-1&season=73&month=-1&location=homeaway&key=2c2b89ea7345cae8&client_code=echl&site_id=0&league_id=1&conference_id=-1&division_id=-1&lang=en&callback=angular.callbacks._0"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	jsonpCallback = regexp.MustCompile(`^[\w$.]+\s*\(`)
	reportGameID  = regexp.MustCompile(`game_id=(\d+)`)
)

// ErrEmptyFeed is returned when the feed holds no schedule section.
var ErrEmptyFeed = errors.New("schedule feed has no sections")

type feedPage struct {
	Sections []struct {
		Data []feedEntry `json:"data"`
	} `json:"sections"`
}

type feedEntry struct {
	Row struct {
		GameID           flexInt `json:"game_id"`
		Date             string  `json:"date"`
		HomeTeamCity     string  `json:"home_team_city"`
		VisitingTeamCity string  `json:"visiting_team_city"`
	} `json:"row"`
	Prop struct {
		GameCenter struct {
			GameLink flexInt `json:"gameLink"`
		} `json:"game_center"`
	} `json:"prop"`
}

// flexInt accepts both 25401 and "25401".
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("not an integer: %s", data)
	}
	*f = flexInt(n)
	return nil
}

// UnwrapJSONP strips a JSONP callback such as "angular.callbacks._0(...);"
// and the extra "([ ... ])" layer the feed adds around its array.
func UnwrapJSONP(raw string) string {
	s := strings.TrimSpace(raw)
	if loc := jsonpCallback.FindStringIndex(s); loc != nil {
		s = s[loc[1]-1:]
	}
	s = strings.TrimSuffix(s, ";")
	s = strings.TrimSpace(s)
	for strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// ParseFeed decodes the feed and returns the fixtures involving the team
// from subjectCity, in feed order. The city match ignores case.
func ParseFeed(raw, subjectCity string) ([]game.Scheduled, error) {
	var pages []feedPage
	if err := json.Unmarshal([]byte(UnwrapJSONP(raw)), &pages); err != nil {
		return nil, fmt.Errorf("decoding schedule feed: %w", err)
	}
	if len(pages) == 0 || len(pages[0].Sections) == 0 {
		return nil, ErrEmptyFeed
	}

	games := []game.Scheduled{}
	for _, entry := range pages[0].Sections[0].Data {
		r := entry.Row
		home := strings.EqualFold(strings.TrimSpace(r.HomeTeamCity), subjectCity)
		away := strings.EqualFold(strings.TrimSpace(r.VisitingTeamCity), subjectCity)
		if !home && !away {
			continue
		}

		id := int(entry.Prop.GameCenter.GameLink)
		if id == 0 {
			id = int(r.GameID)
		}
		if id == 0 {
			continue
		}

		s := game.Scheduled{GameID: id, Date: r.Date}
		if home {
			s.Opponent = r.VisitingTeamCity
			s.Location = string(game.SideHome)
		} else {
			s.Opponent = r.HomeTeamCity
			s.Location = string(game.SideAway)
		}
		games = append(games, s)
	}
	return games, nil
}

// GameIDFromGameCenter finds the official report link on a game center page
// and returns its game id.
func GameIDFromGameCenter(html string) (int, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, false
	}
	id := 0
	doc.Find(`a[href*="official-game-report.php"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if m := reportGameID.FindStringSubmatch(href); m != nil {
			id, _ = strconv.Atoi(m[1])
			return false
		}
		return true
	})
	return id, id != 0
}

// Client fetches the schedule feed.
type Client struct {
	fetcher scraper.Fetcher
	url     string
	city    string
}

// NewClient creates a Client for the team from city.
func NewClient(fetcher scraper.Fetcher, feedURL, city string) *Client {
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	return &Client{fetcher: fetcher, url: feedURL, city: city}
}

// FetchFeed returns the raw feed body.
func (c *Client) FetchFeed(ctx context.Context) (string, error) {
	raw, err := c.fetcher.Fetch(ctx, c.url)
	if err != nil {
		return "", fmt.Errorf("fetching schedule feed: %w", err)
	}
	return raw, nil
}

// Games fetches the feed and returns the team's fixtures.
func (c *Client) Games(ctx context.Context) ([]game.Scheduled, error) {
	raw, err := c.FetchFeed(ctx)
	if err != nil {
		return nil, err
	}
	return ParseFeed(raw, c.city)
}
