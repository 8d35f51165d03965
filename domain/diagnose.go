package domain

// Diagnostic is the outcome of the silent-failure heuristic run after a
// generation reports success.
type Diagnostic struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

const silentFailureHint = "生成结果可能不完整：token 用量为 0 或模型返回了错误。" +
	"请检查 API 凭证、网络连通性与模型服务状态。"

// Diagnose flags a likely silent backend failure: the backend reported an
// error, or the response came back with zero token usage. Zero usage can
// legitimately happen only for contrived inputs, so false positives are
// accepted; callers treat a warn as a hint, never as a hard error.
func Diagnose(usage TokenUsage, script Script) Diagnostic {
	if script.ModelError() || usage.Total() == 0 {
		return Diagnostic{OK: false, Reason: silentFailureHint}
	}
	return Diagnostic{OK: true}
}
