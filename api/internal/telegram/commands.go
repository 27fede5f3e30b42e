package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"question-builder/api/internal/paper"
)

const helpText = `Send photos of an exam question paper and I will return it as an editable Word file.
Several pages can go in one album or one after another.

Defaults used when the paper does not show them:
/school <name>
/title <exam title>
/class <class>
/subject <subject>
/marks <max marks>
/duration <duration>

/engine gemini|gpt picks the model, /settings shows the current values, /reset clears them.`

func (r *Router) HandleCommand(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	arg := strings.TrimSpace(msg.CommandArguments())
	st := r.chat(cid)

	switch msg.Command() {
	case "start", "help":
		r.send(cid, helpText)
	case "settings":
		d, eng := st.snapshot()
		r.send(cid, settingsText(d, eng))
	case "reset":
		st.update(func(d *paper.Defaults, engine *string) {
			*d = paper.Defaults{}
			*engine = ""
		})
		r.send(cid, "Defaults cleared.")
	case "engine":
		switch name := strings.ToLower(arg); name {
		case "":
			_, eng := st.snapshot()
			r.send(cid, "Current engine: "+orDefault(eng)+"\nUsage: /engine gemini | /engine gpt")
		case "gemini", "gpt", "openai":
			st.update(func(_ *paper.Defaults, engine *string) { *engine = name })
			r.send(cid, "Engine: "+name)
		default:
			r.send(cid, "Unknown engine. Available: gemini | gpt")
		}
	case "marks":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			r.send(cid, "Usage: /marks 80")
			return
		}
		st.update(func(d *paper.Defaults, _ *string) { d.MaxMarks = n })
		r.send(cid, fmt.Sprintf("Max marks: %d", n))
	case "school", "title", "class", "subject", "duration":
		r.setText(cid, st, msg.Command(), arg)
	default:
		r.send(cid, "Unknown command. /help")
	}
}

func (r *Router) setText(cid int64, st *chatSettings, field, value string) {
	st.update(func(d *paper.Defaults, _ *string) {
		switch field {
		case "school":
			d.SchoolName = value
		case "title":
			d.ExamTitle = value
		case "class":
			d.ClassName = value
		case "subject":
			d.Subject = value
		case "duration":
			d.Duration = value
		}
	})
	if value == "" {
		r.send(cid, field+" cleared.")
		return
	}
	r.send(cid, field+": "+value)
}

func settingsText(d paper.Defaults, engine string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "School: %s\n", orDash(d.SchoolName))
	fmt.Fprintf(&b, "Exam: %s\n", orDash(d.ExamTitle))
	fmt.Fprintf(&b, "Class: %s\n", orDash(d.ClassName))
	fmt.Fprintf(&b, "Subject: %s\n", orDash(d.Subject))
	fmt.Fprintf(&b, "Max marks: %d\n", d.MaxMarks)
	fmt.Fprintf(&b, "Duration: %s\n", orDash(d.Duration))
	fmt.Fprintf(&b, "Engine: %s", orDefault(engine))
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func orDefault(engine string) string {
	if engine == "" {
		return "default"
	}
	return engine
}
