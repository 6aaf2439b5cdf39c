package domain

// Scenario is a complaint the simulated customer raises.
// It is fixed for the lifetime of a simulator session.
type Scenario struct {
	Issue       string `json:"issue" yaml:"issue"`
	OpeningLine string `json:"opening_line" yaml:"opening_line"`
}

// DefaultScenarios is the built-in complaint catalog.
var DefaultScenarios = []Scenario{
	{
		Issue:       "ハンバーグに髪の毛が混入していた",
		OpeningLine: "おい！このハンバーグに髪の毛が入ってるんだけど！？どういう管理してるんだ！",
	},
	{
		Issue:       "ステーキが生焼けだった",
		OpeningLine: "中が完全に生なんだけど？これで金取る気？",
	},
	{
		Issue:       "定食に付くはずの野菜がなかった",
		OpeningLine: "野菜が付いてないんだけど？おかしくない？",
	},
}
