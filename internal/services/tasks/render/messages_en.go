package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, "tasks.headline", "Task assignments have been generated for %s!")
	message.SetString(lang, "tasks.none", defaultNoTasks)
	message.SetString(lang, "tasks.section.pre.title", defaultPreTitle)
	message.SetString(lang, "tasks.section.during.title", defaultDuringTitle)
	message.SetString(lang, "tasks.section.post.title", defaultPostTitle)
	message.SetString(lang, "tasks.section.pre.footer", "Complete before session starts")
	message.SetString(lang, "tasks.section.during.footer", "Assigned for the duration of the session")
	message.SetString(lang, "tasks.section.post.footer", "Complete after session ends")
}
