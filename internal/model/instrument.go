package model

// Instrument is a tradable asset identified by its data-source ticker.
type Instrument struct {
	Name   string `yaml:"name"`
	Ticker string `yaml:"ticker"`
}

// InstrumentSet is the fixed analysis universe: one index that is always
// included plus the commodities a user can select from.
type InstrumentSet struct {
	Index       Instrument
	Commodities []Instrument
}

// DefaultInstrumentSet returns KOSPI against the front-month commodity futures.
func DefaultInstrumentSet() InstrumentSet {
	return InstrumentSet{
		Index: Instrument{Name: "KOSPI", Ticker: "^KS11"},
		Commodities: []Instrument{
			{Name: "Gold", Ticker: "GC=F"},
			{Name: "Copper", Ticker: "HG=F"},
			{Name: "Oats", Ticker: "ZO=F"},
			{Name: "Natural Gas", Ticker: "NG=F"},
			{Name: "Silver", Ticker: "SI=F"},
			{Name: "Platinum", Ticker: "PL=F"},
			{Name: "Crude Oil", Ticker: "CL=F"},
			{Name: "Wheat", Ticker: "ZW=F"},
			{Name: "Soybeans", Ticker: "ZS=F"},
		},
	}
}

// Lookup finds a selectable commodity by display name.
func (s InstrumentSet) Lookup(name string) (Instrument, bool) {
	for _, in := range s.Commodities {
		if in.Name == name {
			return in, true
		}
	}
	return Instrument{}, false
}

// Names lists the selectable commodity names in configuration order.
func (s InstrumentSet) Names() []string {
	names := make([]string, len(s.Commodities))
	for i, in := range s.Commodities {
		names[i] = in.Name
	}
	return names
}
