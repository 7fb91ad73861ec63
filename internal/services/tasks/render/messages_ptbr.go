package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.BrazilianPortuguese

	message.SetString(lang, "tasks.headline", "As tarefas da sessao %s foram distribuidas!")
	message.SetString(lang, "tasks.none", "Nenhuma tarefa")
	message.SetString(lang, "tasks.section.pre.title", "Tarefas antes da sessao:")
	message.SetString(lang, "tasks.section.during.title", "Tarefas durante a sessao:")
	message.SetString(lang, "tasks.section.post.title", "Tarefas depois da sessao:")
	message.SetString(lang, "tasks.section.pre.footer", "Conclua antes do inicio da sessao")
	message.SetString(lang, "tasks.section.during.footer", "Valido durante toda a sessao")
	message.SetString(lang, "tasks.section.post.footer", "Conclua depois do fim da sessao")
}
