package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fpvcatalog/partscrawler/internal/catalog"
)

// specPattern extracts one specification attribute from free text.
type specPattern struct {
	key      string
	re       *regexp.Regexp
	group    int                 // submatch index holding the value
	suffix   string              // appended to the captured value, e.g. "KV"
	validate func(string) bool   // optional range check; failure drops the match
}

// Validation ranges. Values outside these are almost always a regex
// catching the wrong number (a price, a part number) rather than a real
// specification.
func validRange(min, max int) func(string) bool {
	return func(s string) bool {
		n, err := strconv.Atoi(s)
		if err != nil {
			return false
		}
		return n >= min && n <= max
	}
}

var motorPatterns = []specPattern{
	{key: "kv", re: regexp.MustCompile(`(?i)(\d{3,5})\s*kv\b`), group: 1, validate: validRange(100, 10000)},
	{key: "kv", re: regexp.MustCompile(`(?i)\bkv\s*[:=]?\s*(\d{3,5})`), group: 1, validate: validRange(100, 10000)},
	{key: "stator_size", re: regexp.MustCompile(`(?i)\b(\d{4})\b[\s-]*(?:size|stator|motor)`), group: 1},
	{key: "stator_size", re: regexp.MustCompile(`(?i)stator\s*(?:size)?\s*[:=]?\s*(\d{2}[\sx.]?\d{2})`), group: 1},
	{key: "shaft_diameter", re: regexp.MustCompile(`(?i)shaft\s*(?:diameter)?\s*[:=]?\s*(\d+(?:\.\d+)?)\s*mm`), group: 1, suffix: "mm"},
	{key: "weight", re: regexp.MustCompile(`(?i)weight\s*[:=]?\s*(\d+(?:\.\d+)?)\s*g\b`), group: 1, suffix: "g"},
	{key: "max_thrust", re: regexp.MustCompile(`(?i)(?:max\.?\s*)?thrust\s*[:=]?\s*(\d+(?:\.\d+)?)\s*(?:g|kg)`), group: 1},
}

var batteryPatterns = []specPattern{
	{key: "capacity", re: regexp.MustCompile(`(?i)(\d{3,5})\s*mah`), group: 1, suffix: "mAh", validate: validRange(100, 50000)},
	{key: "c_rating", re: regexp.MustCompile(`(?i)\b(\d{1,3})\s*c\b(?:\s*(?:rating|discharge))?`), group: 1, suffix: "C", validate: validRange(1, 200)},
	{key: "cell_count", re: regexp.MustCompile(`(?i)\b(\d{1,2})s\b`), group: 1, suffix: "S", validate: validRange(1, 12)},
	{key: "connector", re: regexp.MustCompile(`(?i)\b(xt30|xt60|xt90|ec3|ec5|deans|jst-ph|jst|gnb27|bt2\.0|a30)\b`), group: 1},
	{key: "voltage", re: regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*v\b`), group: 1, suffix: "V"},
}

// Prop size appears in several textual encodings: 5x4.3x3, 5043, 5.1x4.6,
// "5 inch tri-blade".
var propPatterns = []specPattern{
	{key: "size", re: regexp.MustCompile(`(?i)\b(\d{1,2}(?:\.\d+)?)\s*[x*]\s*(\d{1,2}(?:\.\d+)?)(?:\s*[x*]\s*(\d))?\b`), group: 0},
	{key: "size", re: regexp.MustCompile(`\b(\d{2})(\d{2})\b`), group: 0},
	{key: "blade_count", re: regexp.MustCompile(`(?i)(\d)[\s-]*blade`), group: 1, validate: validRange(2, 8)},
	{key: "blade_count", re: regexp.MustCompile(`(?i)\b(tri|bi|quad)[\s-]?blade`), group: 1},
	{key: "material", re: regexp.MustCompile(`(?i)\b(polycarbonate|carbon\s*fiber|nylon|pc|abs|glass\s*fiber)\b`), group: 1},
	{key: "pitch", re: regexp.MustCompile(`(?i)pitch\s*[:=]?\s*(\d+(?:\.\d+)?)`), group: 1},
	{key: "rotation", re: regexp.MustCompile(`(?i)\b(cw|ccw|clockwise|counter-?clockwise)\b`), group: 1},
}

var framePatterns = []specPattern{
	{key: "wheelbase", re: regexp.MustCompile(`(?i)wheelbase\s*[:=]?\s*(\d{2,3})\s*mm`), group: 1, suffix: "mm", validate: validRange(60, 500)},
	{key: "wheelbase", re: regexp.MustCompile(`(?i)\b(\d{3})\s*mm\s*wheelbase`), group: 1, suffix: "mm", validate: validRange(60, 500)},
	{key: "frame_class", re: regexp.MustCompile(`(?i)\b(\d(?:\.\d)?)\s*(?:inch|")`), group: 1, suffix: "inch"},
	{key: "material", re: regexp.MustCompile(`(?i)\b(3k\s*carbon|carbon\s*fiber|t700|aluminum|titanium)\b`), group: 1},
	{key: "arm_thickness", re: regexp.MustCompile(`(?i)arm(?:\s*thickness)?\s*[:=]?\s*(\d+(?:\.\d+)?)\s*mm`), group: 1, suffix: "mm"},
}

var stackPatterns = []specPattern{
	{key: "current_rating", re: regexp.MustCompile(`(?i)\b(\d{2,3})\s*a\b(?:\s*(?:esc|bl_?heli|continuous))?`), group: 1, suffix: "A", validate: validRange(10, 200)},
	{key: "processor", re: regexp.MustCompile(`(?i)\b(f4|f7|h7|g4|f405|f722|h743|g473)\b`), group: 1},
	{key: "mounting", re: regexp.MustCompile(`(?i)\b(30\.5\s*x\s*30\.5|20\s*x\s*20|25\.5\s*x\s*25\.5|16\s*x\s*16)\s*mm`), group: 1, suffix: "mm"},
	{key: "gyro", re: regexp.MustCompile(`(?i)\b(mpu6000|icm42688|icm20689|bmi270)\b`), group: 1},
}

var cameraPatterns = []specPattern{
	{key: "sensor", re: regexp.MustCompile(`(?i)\b(\d/\d(?:\.\d)?)["']?\s*(?:cmos|ccd|sensor)`), group: 1},
	{key: "sensor", re: regexp.MustCompile(`(?i)\b(starlight|night\s*vision)\b`), group: 1},
	{key: "resolution", re: regexp.MustCompile(`(?i)\b(\d{3,4})\s*tvl\b`), group: 1, suffix: "TVL"},
	{key: "resolution", re: regexp.MustCompile(`(?i)\b(4k|1080p|720p|2\.7k)\b`), group: 1},
	{key: "fov", re: regexp.MustCompile(`(?i)fov\s*[:=]?\s*(\d{2,3})`), group: 1, suffix: "°"},
	{key: "fov", re: regexp.MustCompile(`(?i)(\d{2,3})\s*(?:degree|°)\s*fov`), group: 1, suffix: "°"},
	{key: "lens", re: regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*mm\s*lens`), group: 1, suffix: "mm"},
	{key: "aspect_ratio", re: regexp.MustCompile(`(?i)\b(4:3|16:9)\b`), group: 1},
}

var specTables = map[catalog.Category][]specPattern{
	catalog.Motor:   motorPatterns,
	catalog.Battery: batteryPatterns,
	catalog.Prop:    propPatterns,
	catalog.Frame:   framePatterns,
	catalog.Stack:   stackPatterns,
	catalog.Camera:  cameraPatterns,
}

// MineSpecs extracts category-specific attributes from product text. It is
// applied only after a category is known. Best-effort throughout: a
// pattern that finds nothing leaves its key unset, never errors.
func MineSpecs(category catalog.Category, name, description string) map[string]string {
	patterns, ok := specTables[category]
	if !ok {
		return map[string]string{}
	}

	text := name + " " + description
	specs := make(map[string]string)

	for _, p := range patterns {
		if _, done := specs[p.key]; done {
			continue
		}

		matches := p.re.FindStringSubmatch(text)
		if matches == nil {
			continue
		}

		value := strings.TrimSpace(matches[0])
		if p.group > 0 && p.group < len(matches) {
			value = strings.TrimSpace(matches[p.group])
		}
		if value == "" {
			continue
		}

		if p.validate != nil && !p.validate(value) {
			continue
		}

		specs[p.key] = value + p.suffix
	}

	return specs
}
