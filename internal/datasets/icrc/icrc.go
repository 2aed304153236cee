// Package icrc scrapes the countries where the International Committee of
// the Red Cross works from its "Where we work" page.
package icrc

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ifrc-nsd/nsdata/internal/datasets/factory"
	"github.com/ifrc-nsd/nsdata/internal/transport"
	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/identity"
	"github.com/ifrc-nsd/nsdata/pkg/logging"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// Name is the catalog name of the dataset.
const Name = "ICRC Presence"

// The site rejects Go's default user agent.
const userAgent = "Mozilla/5.0 (compatible; nsdata)"

const (
	columnPresence     = "ICRC presence"
	columnKeyOperation = "Key operation"
)

// Regional responses listed alongside countries.
var excludedEntries = []string{"Lake Chad", "Sahel", "test"}

func init() {
	factory.Register(factory.Spec{
		Name: Name,
		New: func(info catalog.Info, args dataset.Args, deps factory.Deps) (dataset.Dataset, error) {
			return New(info, args, deps)
		},
	})
}

// Presence lists whether the ICRC is present in each country, whether it
// runs a key operation there, and the introduction of its country page.
type Presence struct {
	dataset.Base
	client  *transport.Client
	pageURL string
	policy  identity.Policy
}

// New creates the ICRC Presence loader.
func New(info catalog.Info, args dataset.Args, deps factory.Deps) (*Presence, error) {
	policy, err := args.Policy(identity.Warn)
	if err != nil {
		return nil, err
	}
	pageURL := constants.ICRCURL
	if deps.BaseURL != "" {
		pageURL = deps.URL("") + "/en/where-we-work"
	}
	return &Presence{
		Base: dataset.NewBase(info, deps.Registry),
		client: deps.Client("icrc",
			transport.WithUserAgent(userAgent),
			transport.WithRateLimit(constants.DefaultRateLimit, constants.BurstSize)),
		pageURL: pageURL,
		policy:  policy,
	}, nil
}

type country struct {
	name         string
	url          string
	keyOperation bool
	description  string
}

// Pull reads the country list and then every linked country page for its
// description. A country page that cannot be read leaves the description empty.
func (d *Presence) Pull(ctx context.Context, _ dataset.Filters) (*table.Table, error) {
	doc, err := d.fetch(ctx, d.pageURL)
	if err != nil {
		return nil, err
	}
	countries, err := d.parseCountries(doc)
	if err != nil {
		return nil, err
	}

	p := pool.New().WithMaxGoroutines(constants.DefaultConcurrency)
	for i := range countries {
		c := &countries[i]
		if c.url == "" {
			continue
		}
		p.Go(func() {
			desc, err := d.description(ctx, c.url)
			if err != nil {
				logging.FromContext(ctx).Debug().Err(err).Str("url", c.url).Msg("Skipping ICRC country description")
				return
			}
			c.description = desc
		})
	}
	p.Wait()

	t := table.New(constants.ColumnCountry, columnPresence, constants.ColumnURL, columnKeyOperation, constants.ColumnDescription)
	for _, c := range countries {
		t.Rows = append(t.Rows, table.Row{
			constants.ColumnCountry:     c.name,
			columnPresence:              yesNo(c.url != ""),
			constants.ColumnURL:         c.url,
			columnKeyOperation:          yesNo(c.keyOperation),
			constants.ColumnDescription: c.description,
		})
	}
	return t, nil
}

func (d *Presence) fetch(ctx context.Context, u string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.NewValidationError("url", u, err.Error())
	}
	req.Header.Set("Accept", "text/html")
	resp, err := d.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	body, err := transport.ReadResponse(resp, d.client.Source(), u)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, errors.WrapParse("html", u, err)
	}
	return doc, nil
}

func (d *Presence) parseCountries(doc *html.Node) ([]country, error) {
	block := first(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Div && attr(n, "id") == "blockRegionalList"
	})
	if block == nil {
		return nil, errors.NewParseError("html", d.pageURL, "regional list not found", nil)
	}
	base, err := url.Parse(d.pageURL)
	if err != nil {
		return nil, errors.NewValidationError("url", d.pageURL, err.Error())
	}

	var out []country
	for _, list := range findAll(block, func(n *html.Node) bool {
		return n.DataAtom == atom.Ul && hasClass(n, "list")
	}) {
		for _, item := range findAll(list, func(n *html.Node) bool {
			return n.DataAtom == atom.Li && hasClass(n, "item")
		}) {
			c := country{
				name:         strings.TrimSpace(text(item)),
				keyOperation: hasClass(item, "keyOperations"),
			}
			if a := first(item, func(n *html.Node) bool { return n.DataAtom == atom.A }); a != nil {
				if href := strings.TrimSpace(attr(a, "href")); href != "" {
					if ref, err := url.Parse(href); err == nil {
						c.url = base.ResolveReference(ref).String()
					}
				}
			}
			out = append(out, c)
		}
	}
	return out, nil
}

// description returns the text of the third element inside the page's
// introduction block.
func (d *Presence) description(ctx context.Context, u string) (string, error) {
	doc, err := d.fetch(ctx, u)
	if err != nil {
		return "", err
	}
	intro := first(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Div && hasClass(n, "block-introduction")
	})
	if intro == nil {
		return "", errors.NewParseError("html", u, "introduction not found", nil)
	}
	elements := findAll(intro, func(n *html.Node) bool { return n.Type == html.ElementNode && n != intro })
	if len(elements) < 3 {
		return "", errors.NewParseError("html", u, "introduction has no description", nil)
	}
	return strings.TrimSpace(text(elements[2])), nil
}

// Process implements dataset.Dataset.
func (d *Presence) Process(ctx context.Context, raw *table.Table) (*table.Table, error) {
	t := raw.Clone().Filter(func(r table.Row) bool {
		return !slices.Contains(excludedEntries, r[constants.ColumnCountry])
	})
	t, err := d.ResolveIdentity(ctx, t, identity.Country, constants.ColumnCountry, d.policy)
	if err != nil {
		return nil, err
	}
	return d.OrderColumns(t, d.Info().ColumnNames(), true)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func first(root *html.Node, match func(*html.Node) bool) *html.Node {
	if all := findAll(root, match); len(all) > 0 {
		return all[0]
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(attr(n, "class")), class)
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
