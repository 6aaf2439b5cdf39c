package simulator

import (
	"fmt"
	"strings"

	"github.com/ashureev/ajiwai-labs/internal/domain"
)

// SuccessMessage is shown once when the checklist first completes.
const SuccessMessage = "🎉 クレーム対応成功！"

// ForgivenessLine is what the customer is told to say once nothing remains.
// It is flavour only; resolution is decided by the checklist.
const ForgivenessLine = "わかった、そこまで言うなら今回は許すよ"

const systemPromptTemplate = `あなたは飲食店でクレームを言う、非常に怒っている客です。
以下の条件でロールプレイをしてください。

【クレーム内容】
%s

【ルール】
- まだ満たされていない要素についてのみ怒ってください
- 未達成の要素が「なし」になったら
「%s」
と言って会話を終了してください
- 口調は終始高圧的で理不尽
`

const auxInstructionTemplate = `未達成の要素は以下です：
%s

この状況に合ったクレーム客のセリフを1つ返してください。`

// SystemPrompt builds the roleplay instruction for a scenario.
func SystemPrompt(sc domain.Scenario) string {
	return fmt.Sprintf(systemPromptTemplate, sc.Issue, ForgivenessLine)
}

// AuxInstruction tells the customer which categories are still unsatisfied.
func AuxInstruction(remaining []domain.Category) string {
	list := "なし"
	if len(remaining) > 0 {
		labels := make([]string, len(remaining))
		for i, c := range remaining {
			labels[i] = c.Label()
		}
		list = strings.Join(labels, ", ")
	}
	return fmt.Sprintf(auxInstructionTemplate, list)
}

// composePayload returns the messages sent for one turn: the committed
// history, the new submission and the auxiliary instruction last.
func composePayload(history []domain.Message, input string, checklist domain.Checklist) []domain.Message {
	payload := make([]domain.Message, 0, len(history)+2)
	payload = append(payload, history...)
	payload = append(payload,
		domain.Message{Role: domain.RoleUser, Content: input},
		domain.Message{Role: domain.RoleUser, Content: AuxInstruction(checklist.Remaining())},
	)
	return payload
}
