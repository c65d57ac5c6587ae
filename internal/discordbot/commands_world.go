package discordbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/talgya/abydos/internal/bizerr"
	"github.com/talgya/abydos/internal/worldstate"
)

// cmdWeatherStatus reports the current virtual weather and its next
// rotation estimate, grounded on aby_environment.py's weather_status.
func (b *Bot) cmdWeatherStatus(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) error {
	snap := b.world.Current(ctx)
	b.reply(s, m.ChannelID, fmt.Sprintf("🌤️ 현재 날씨: %s\n다음 변화(예상): %s",
		weatherText(snap.Weather), snap.NextChangeAt.Format("01/02 15:04")))
	return nil
}

// cmdWeatherSet parses "날씨설정 <맑음|흐림|모래폭풍>": forces the weather
// and reschedules the next change, guild-manager only. Grounded on
// aby_environment.py's weather_set, minus its hardcoded owner-ID bypass
// (out of place in a multi-tenant bot — every guild has its own admins).
func (b *Bot) cmdWeatherSet(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if !b.isModerator(m) {
		return bizerr.Precondition("not_admin")
	}
	if len(args) == 0 {
		return bizerr.Invalid("weather")
	}
	w, ok := parseWeatherArg(args[0])
	if !ok {
		return bizerr.Invalid("weather")
	}
	if err := b.world.SetWeather(ctx, w); err != nil {
		return err
	}
	b.reply(s, m.ChannelID, fmt.Sprintf("✅ 날씨를 %s(으)로 설정했어.", weatherText(w)))
	return nil
}

func parseWeatherArg(raw string) (worldstate.Weather, bool) {
	switch strings.ToLower(raw) {
	case "맑음", "clear", "sun", "sunny":
		return worldstate.Clear, true
	case "흐림", "cloudy", "cloud":
		return worldstate.Cloudy, true
	case "모래", "모래폭풍", "폭풍", "sandstorm", "storm":
		return worldstate.Sandstorm, true
	default:
		return "", false
	}
}

// isModerator reports whether m's author holds Manage Server in the
// channel the command was issued in.
func (b *Bot) isModerator(m *discordgo.MessageCreate) bool {
	perms, err := b.session.State.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		return false
	}
	return perms&discordgo.PermissionManageGuild != 0
}
