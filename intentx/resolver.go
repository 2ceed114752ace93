// Package intentx maps an inbound WhatsApp message to a canned reply.
// Resolution is pure: no I/O, and every input yields a reply.
package intentx

import (
	"regexp"
	"strings"

	"github.com/maachbazar/whatsapp-agent/msgx"
)

// Rule is one text intent. Match returns whether the rule applies and any
// captured value, which Build receives.
type Rule struct {
	Name  string
	Match func(text string) (string, bool)
	Build func(captured string) msgx.Reply
}

// Resolver classifies messages against an ordered rule list
type Resolver struct {
	catalog Catalog
	rules   []Rule
}

// NewResolver builds the standard rule list over catalog
func NewResolver(catalog Catalog) *Resolver {
	r := &Resolver{catalog: catalog}
	r.rules = r.defaultRules()
	return r
}

var defaultResolver = NewResolver(DefaultCatalog)

// Resolve classifies m with the default catalog
func Resolve(m msgx.InboundMessage) msgx.Reply {
	return defaultResolver.Resolve(m)
}

func words(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(` + pattern + `)\b`)
}

var (
	greetingPattern = words(`hi|hello|hey|namaste|namaskar`)
	orderPattern    = words(`order|buy|purchase|get|want|menu`)
	trackingPattern = words(`status|track|where|delivery`)
	helpPattern     = words(`help|support|assist|info`)
	locationPattern = words(`location|address|pincode|area`)
	pricePattern    = words(`price|cost|rate|how much`)
	orderIDPattern  = regexp.MustCompile(`(?i)\bord\w*\d{3,}\b`)
)

func matches(re *regexp.Regexp) func(string) (string, bool) {
	return func(text string) (string, bool) {
		return "", re.MatchString(text)
	}
}

func (r *Resolver) defaultRules() []Rule {
	catalog := func(string) msgx.Reply { return CatalogList(r.catalog) }
	return []Rule{
		{Name: "greeting", Match: matches(greetingPattern), Build: func(string) msgx.Reply { return Welcome() }},
		{Name: "order", Match: matches(orderPattern), Build: catalog},
		{Name: "tracking", Match: matches(trackingPattern), Build: func(string) msgx.Reply { return Tracking("") }},
		{Name: "help", Match: matches(helpPattern), Build: func(string) msgx.Reply { return Help() }},
		{Name: "location", Match: matches(locationPattern), Build: func(string) msgx.Reply { return Location() }},
		{Name: "price", Match: matches(pricePattern), Build: catalog},
		{
			Name: "order_id",
			Match: func(text string) (string, bool) {
				id := orderIDPattern.FindString(text)
				return strings.ToUpper(id), id != ""
			},
			Build: Tracking,
		},
	}
}

// Rules returns the text rules in evaluation order
func (r *Resolver) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Classify returns the name of the first matching text rule, or "default"
func (r *Resolver) Classify(text string) string {
	name, _ := r.classify(text)
	return name
}

func (r *Resolver) classify(text string) (string, msgx.Reply) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "empty", Help()
	}
	for _, rule := range r.rules {
		if captured, ok := rule.Match(text); ok {
			return rule.Name, rule.Build(captured)
		}
	}
	return "default", Help()
}

// Resolve returns the reply for m
func (r *Resolver) Resolve(m msgx.InboundMessage) msgx.Reply {
	switch m.Type {
	case msgx.TypeText, "":
		if m.Type == "" && m.Text == nil {
			return Unsupported()
		}
		_, reply := r.classify(m.TextBody())
		return reply
	case msgx.TypeInteractive, msgx.TypeButton:
		return r.resolveReplyID(m.ReplyID())
	default:
		return Unsupported()
	}
}

func (r *Resolver) resolveReplyID(id string) msgx.Reply {
	switch id {
	case ActionViewCatalog:
		return CatalogList(r.catalog)
	case ActionTrackOrder:
		return Tracking("")
	case ActionContactSupport:
		return Help()
	}
	if p, ok := r.catalog.Lookup(id); ok {
		return ProductDetail(p)
	}
	return Help()
}
