package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

func smells(m dsl.Matcher) {
	// Consecutive guards with the same result can be merged:
	//   if a { return err }
	//   if b { return err }
	// => if a || b { return err }
	m.Match(`if $c1 { return $ret }; if $c2 { return $ret }`).
		Report(`two consecutive guards return the same value; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { return $ret }`)

	m.Match(`if $c1 { continue }; if $c2 { continue }`).
		Report(`two consecutive continues; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { continue }`)

	m.Match(`for $*_ { for $*_ { $*_ } }`).
		Report(`nested for-loop; consider extracting inner loop logic or reducing algorithmic complexity`)
}

func secrets(m dsl.Matcher) {
	// API keys travel in ReadingRequest.APIKey and must never reach a log line.
	m.Match(`slog.String($_, $req.APIKey)`, `slog.Any($_, $req.APIKey)`).
		Report(`API key passed to the logger`)

	m.Match(`$logger.$_($*_, "api_key", $*_)`, `$logger.$_($*_, "apiKey", $*_)`).
		Where(m["logger"].Type.Is(`*slog.Logger`)).
		Report(`API key attribute in a log call`)
}

func transport(m dsl.Matcher) {
	// Model calls need a bounded client; the default one never times out.
	m.Match(`http.DefaultClient`, `http.Get($*_)`, `http.Post($*_)`).
		Where(!m.File().Name.Matches(`_test\.go$`)).
		Report(`use an *http.Client with a timeout`)
}

func errs(m dsl.Matcher) {
	m.Match(`fmt.Errorf($f, $*_, $err)`).
		Where(m["err"].Type.Is(`error`) && !m["f"].Text.Matches(`%w`)).
		Report(`wrap errors with %w so callers can use errors.Is/As`)
}
