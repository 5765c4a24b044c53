package envimport

import (
	"regexp"
	"time"
)

// SwitchBotName is the parser name shared by both SwitchBot export generations
const SwitchBotName = "SwitchBot"

// NewSwitchBotParser reads the current SwitchBot app export:
// Date,Temperature_Celsius(°C),Relative_Humidity(%),...
func NewSwitchBotParser(loc *time.Location) Parser {
	return &columnParser{
		name:            SwitchBotName,
		delimiter:       ",",
		timestamp:       exactColumn("Date"),
		temperature:     containsColumn("Temperature_Celsius"),
		humidity:        containsColumn("Relative_Humidity"),
		requireHumidity: true,
		layouts:         DefaultTimestampLayouts,
		loc:             loc,
	}
}

// NewSwitchBotLegacyParser reads older exports with Time,Temperature[,Humidity] columns.
func NewSwitchBotLegacyParser(loc *time.Location) Parser {
	return &columnParser{
		name:        SwitchBotName,
		delimiter:   ",",
		timestamp:   regexpColumn(regexp.MustCompile(`(?i)^time$`)),
		temperature: regexpColumn(regexp.MustCompile(`(?i)^temperature$`)),
		humidity:    regexpColumn(regexp.MustCompile(`(?i)^humidity$`)),
		layouts:     DefaultTimestampLayouts,
		loc:         loc,
	}
}
