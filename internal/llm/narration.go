// Narration turns a bare incident/debt event into one or two lines of
// Korean flavor text for the guild announcement, through the budget-gated
// Oracle. Callers that hit ErrBudgetExceeded or any other error fall back
// to the event's own plain Title/Description — narration is cosmetic,
// never load-bearing.
package llm

import (
	"fmt"
)

// NarrateIncident asks the oracle for a short in-world flavor line for a
// debt-pressure incident that already has a mechanical title/description.
func NarrateIncident(o *Oracle, guildID, title, description string, deltaDebt int64) (string, error) {
	if !o.Enabled() {
		return "", fmt.Errorf("llm: oracle disabled")
	}

	instructions := `당신은 아비도스 식민지의 사건 기록관입니다. 주어진 사건을 1~2문장의 짧고 담백한 한국어 플레이버 텍스트로 각색하세요. 구체적인 수치나 게임 용어를 그대로 나열하지 말고, 분위기를 전달하는 문장으로 바꾸세요. 과장하지 말 것.`
	input := fmt.Sprintf("길드: %s\n사건 제목: %s\n사건 설명: %s\n부채 변동: %+d", guildID, title, description, deltaDebt)

	return o.Generate("incident_narration", instructions, input, 160)
}
