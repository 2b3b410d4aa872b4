package world

import "encoding/json"

// Kind names a category of record in the world dataset.
type Kind string

const (
	KindCulture  Kind = "culture"
	KindBurg     Kind = "burg"
	KindState    Kind = "state"
	KindProvince Kind = "province"
	KindReligion Kind = "religion"
	KindRiver    Kind = "river"
	KindRoute    Kind = "route"
	KindMarker   Kind = "marker"
	KindBiome    Kind = "biome"
	KindNameBase Kind = "name-base"
	KindNote     Kind = "note"
	KindCell     Kind = "cell"
	KindFeature  Kind = "feature"
)

// Format identifies which encoding a dataset was decoded from.
type Format string

const (
	FormatJSON   Format = "json"
	FormatLegacy Format = "map"
)

// Info is the map's identity block.
type Info struct {
	Version     string     `json:"version"`
	Seed        FlexString `json:"seed"`
	Width       FlexFloat  `json:"width"`
	Height      FlexFloat  `json:"height"`
	Description string     `json:"description"`
	ExportedAt  string     `json:"exportedAt"`
	MapName     string     `json:"mapName"`
	MapID       FlexString `json:"mapId"`
}

// Options holds the subset of generator options the notes use.
type Options struct {
	VillageMaxPopulation FlexFloat `json:"villageMaxPopulation"`
	Year                 FlexFloat `json:"year"`
	Era                  string    `json:"era"`
	EraShort             string    `json:"eraShort"`
	TemperatureEquator   FlexFloat `json:"temperatureEquator"`
}

// Settings carries units and scales.
type Settings struct {
	DistanceUnit     string    `json:"distanceUnit"`
	DistanceScale    FlexFloat `json:"distanceScale"`
	AreaUnit         string    `json:"areaUnit"`
	HeightUnit       string    `json:"heightUnit"`
	HeightExponent   FlexFloat `json:"heightExponent"`
	TemperatureScale string    `json:"temperatureScale"`
	PopulationRate   FlexFloat `json:"populationRate"`
	Urbanization     FlexFloat `json:"urbanization"`
	MapName          string    `json:"mapName"`
	Options          Options   `json:"options"`
}

// Coordinates are the latitude/longitude bounds of the map image.
type Coordinates struct {
	LatT float64 `json:"latT"`
	LonT float64 `json:"lonT"`
	LatN float64 `json:"latN"`
	LatS float64 `json:"latS"`
	LonW float64 `json:"lonW"`
	LonE float64 `json:"lonE"`
}

// Cell is a pack cell merged with the grid cell that carries its climate.
type Cell struct {
	ID            int
	GridID        int
	X, Y          float64
	Height        int
	GridHeight    int
	Temperature   float64
	Precipitation float64
	HasClimate    bool
	Biome         int
	Culture       int
	State         int
	Province      int
	Religion      int
	Burg          int
	River         int
	Feature       int
	Population    float64
	Area          float64
}

// Feature is a landmass or water body.
type Feature struct {
	ID        int       `json:"i"`
	Land      bool      `json:"land"`
	Border    bool      `json:"border"`
	Type      string    `json:"type"`
	Cells     int       `json:"cells"`
	FirstCell int       `json:"firstCell"`
	Group     string    `json:"group"`
	Area      FlexFloat `json:"area"`
	Name      string    `json:"name"`
}

// CultureCore is the field set shared by the wild placeholder and full cultures.
type CultureCore struct {
	ID      int       `json:"i"`
	Name    string    `json:"name"`
	Base    int       `json:"base"`
	Origins []*int    `json:"origins"`
	Shield  string    `json:"shield"`
	Area    FlexFloat `json:"area"`
	Cells   int       `json:"cells"`
	Rural   FlexFloat `json:"rural"`
	Urban   FlexFloat `json:"urban"`
	Lock    bool      `json:"lock"`
	Removed bool      `json:"removed"`
}

// Core returns the shared fields.
func (c *CultureCore) Core() *CultureCore { return c }

// OriginIDs returns the non-null origin ids in source order.
func (c *CultureCore) OriginIDs() []int {
	ids := make([]int, 0, len(c.Origins))
	for _, o := range c.Origins {
		if o != nil {
			ids = append(ids, *o)
		}
	}
	return ids
}

// Culture is either *WildCulture (id 0) or *FullCulture.
type Culture interface {
	Core() *CultureCore
	isCulture()
}

// WildCulture is the id-0 "no culture" placeholder.
type WildCulture struct {
	CultureCore
}

// FullCulture is a real culture.
type FullCulture struct {
	CultureCore
	Center       int       `json:"center"`
	Code         string    `json:"code"`
	Color        string    `json:"color"`
	Expansionism FlexFloat `json:"expansionism"`
	Type         string    `json:"type"`
}

func (*WildCulture) isCulture() {}
func (*FullCulture) isCulture() {}

// StateCore is shared by the neutral placeholder and full states.
type StateCore struct {
	ID        int             `json:"i"`
	Name      string          `json:"name"`
	Urban     FlexFloat       `json:"urban"`
	Rural     FlexFloat       `json:"rural"`
	Burgs     int             `json:"burgs"`
	Area      FlexFloat       `json:"area"`
	Cells     int             `json:"cells"`
	Neighbors []int           `json:"neighbors"`
	Diplomacy json.RawMessage `json:"diplomacy"`
	Provinces []int           `json:"provinces"`
}

// Core returns the shared fields.
func (s *StateCore) Core() *StateCore { return s }

// State is either *NeutralState (id 0) or *FullState.
type State interface {
	Core() *StateCore
	isState()
}

// NeutralState is the id-0 placeholder for unclaimed land.
type NeutralState struct {
	StateCore
}

// FullState is a real polity.
type FullState struct {
	StateCore
	Form         string          `json:"form"`
	FormName     string          `json:"formName"`
	FullName     string          `json:"fullName"`
	Capital      int             `json:"capital"`
	Color        string          `json:"color"`
	Center       int             `json:"center"`
	Pole         []float64       `json:"pole"`
	Culture      int             `json:"culture"`
	Type         string          `json:"type"`
	Expansionism FlexFloat       `json:"expansionism"`
	Coa          json.RawMessage `json:"coa"`
	Lock         bool            `json:"lock"`
	Removed      bool            `json:"removed"`
}

func (*NeutralState) isState() {}
func (*FullState) isState()    {}

// ReligionCore is shared by the no-religion placeholder and full religions.
type ReligionCore struct {
	ID      int    `json:"i"`
	Name    string `json:"name"`
	Origins []int  `json:"origins"`
}

// Core returns the shared fields.
func (r *ReligionCore) Core() *ReligionCore { return r }

// Religion is either *NoReligion (id 0) or *FullReligion.
type Religion interface {
	Core() *ReligionCore
	isReligion()
}

// NoReligion is the id-0 placeholder.
type NoReligion struct {
	ReligionCore
}

// FullReligion is a real belief system.
type FullReligion struct {
	ReligionCore
	Type         string    `json:"type"`
	Form         string    `json:"form"`
	Deity        *string   `json:"deity"`
	Color        string    `json:"color"`
	Code         string    `json:"code"`
	Center       int       `json:"center"`
	Culture      int       `json:"culture"`
	Expansionism FlexFloat `json:"expansionism"`
	Expansion    string    `json:"expansion"`
	Area         FlexFloat `json:"area"`
	Cells        int       `json:"cells"`
	Rural        FlexFloat `json:"rural"`
	Urban        FlexFloat `json:"urban"`
	Lock         bool      `json:"lock"`
	Removed      bool      `json:"removed"`
}

func (*NoReligion) isReligion()   {}
func (*FullReligion) isReligion() {}

// Burg is a settlement. One cell holds at most one burg.
type Burg struct {
	ID         int             `json:"i"`
	Name       string          `json:"name"`
	Cell       int             `json:"cell"`
	X          float64         `json:"x"`
	Y          float64         `json:"y"`
	Culture    int             `json:"culture"`
	State      int             `json:"state"`
	Feature    int             `json:"feature"`
	Population FlexFloat       `json:"population"`
	Type       string          `json:"type"`
	Coa        json.RawMessage `json:"coa"`
	Capital    Flag            `json:"capital"`
	Port       int             `json:"port"`
	Citadel    Flag            `json:"citadel"`
	Plaza      Flag            `json:"plaza"`
	Shanty     Flag            `json:"shanty"`
	Temple     Flag            `json:"temple"`
	Walls      Flag            `json:"walls"`
	Lock       bool            `json:"lock"`
	Removed    bool            `json:"removed"`
}

// Province is a subdivision of a state.
type Province struct {
	ID       int             `json:"i"`
	State    int             `json:"state"`
	Name     string          `json:"name"`
	FormName string          `json:"formName"`
	FullName string          `json:"fullName"`
	Color    string          `json:"color"`
	Center   int             `json:"center"`
	Pole     []float64       `json:"pole"`
	Area     FlexFloat       `json:"area"`
	Burg     int             `json:"burg"`
	Burgs    []int           `json:"burgs"`
	Rural    FlexFloat       `json:"rural"`
	Urban    FlexFloat       `json:"urban"`
	Coa      json.RawMessage `json:"coa"`
	Lock     bool            `json:"lock"`
	Removed  bool            `json:"removed"`
}

// River is a watercourse. Parent and Basin equal ID for top-level rivers.
type River struct {
	ID          int       `json:"i"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Source      int       `json:"source"`
	Mouth       int       `json:"mouth"`
	Parent      int       `json:"parent"`
	Basin       int       `json:"basin"`
	Cells       []int     `json:"cells"`
	Discharge   FlexFloat `json:"discharge"`
	Length      FlexFloat `json:"length"`
	Width       FlexFloat `json:"width"`
	SourceWidth FlexFloat `json:"sourceWidth"`
}

// Marker is a point of interest.
type Marker struct {
	ID   int     `json:"i"`
	Icon string  `json:"icon"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Cell int     `json:"cell"`
	Type string  `json:"type"`
	Lock bool    `json:"lock"`
}

// Route is a road, trail or sea lane. Each point is [x, y, cell].
type Route struct {
	ID      int         `json:"i"`
	Points  [][]float64 `json:"points"`
	Feature int         `json:"feature"`
	Group   string      `json:"group"`
	Length  FlexFloat   `json:"length"`
	Name    string      `json:"name"`
	Lock    bool        `json:"lock"`
}

// PointCells maps each point to the cell it carries, -1 when the point has none.
func (r *Route) PointCells() []int {
	cells := make([]int, len(r.Points))
	for i, p := range r.Points {
		if len(p) < 3 {
			cells[i] = -1
			continue
		}
		cells[i] = int(p[2])
	}
	return cells
}

// Note is a free-text annotation attached to a marker or regiment.
type Note struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Legend string `json:"legend"`
}

// NameBase is a name generator base. Its id is its position.
type NameBase struct {
	ID   int       `json:"-"`
	Name string    `json:"name"`
	B    string    `json:"b"`
	Min  FlexFloat `json:"min"`
	Max  FlexFloat `json:"max"`
	D    string    `json:"d"`
	M    FlexFloat `json:"m"`
}

// BiomesData is the columnar biome table as stored by the generator.
type BiomesData struct {
	I            []int      `json:"i"`
	Name         []string   `json:"name"`
	Color        []string   `json:"color"`
	BiomesMatrix [][]int    `json:"biomesMartix"`
	Cost         []float64  `json:"cost"`
	Habitability []float64  `json:"habitability"`
	Icons        [][]string `json:"icons"`
	IconsDensity []float64  `json:"iconsDensity"`
}

// Biome is one row of the reconstructed biome table.
type Biome struct {
	ID           int
	Name         string
	Color        string
	Cost         float64
	Habitability float64
	Icons        []string
	IconsDensity float64
}

// Dataset is the canonical, read-only snapshot of one world export.
//
// Burgs[0] and Provinces[0] are nil placeholders. Cultures[0], States[0] and
// Religions[0] hold the placeholder variants.
type Dataset struct {
	Format      Format
	Info        Info
	Settings    Settings
	Coordinates Coordinates

	Cells     []*Cell
	Features  []*Feature
	Cultures  []Culture
	Burgs     []*Burg
	States    []State
	Provinces []*Province
	Religions []Religion
	Rivers    []*River
	Markers   []*Marker
	Routes    []*Route
	Notes     []Note
	NameBases []NameBase

	BiomesData BiomesData

	// Warnings collects non-fatal oddities found while decoding.
	Warnings []string
}

// Stats returns collection sizes keyed by kind, for logging.
func (d *Dataset) Stats() map[Kind]int {
	return map[Kind]int{
		KindCulture:  len(d.Cultures),
		KindBurg:     len(d.Burgs),
		KindState:    len(d.States),
		KindProvince: len(d.Provinces),
		KindReligion: len(d.Religions),
		KindRiver:    len(d.Rivers),
		KindMarker:   len(d.Markers),
		KindRoute:    len(d.Routes),
		KindNote:     len(d.Notes),
		KindNameBase: len(d.NameBases),
		KindCell:     len(d.Cells),
		KindBiome:    len(d.BiomesData.I),
	}
}
