package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.BrazilianPortuguese

	message.SetString(lang, messageKey(CodeUnknown), "Algo deu errado. Tente novamente.")
	message.SetString(lang, messageKey(CodeNoParticipantsSelected), "Selecione pelo menos um personagem antes de distribuir as tarefas.")
	message.SetString(lang, messageKey(CodeUnknownCharacter), "O personagem {{.CharacterID}} nao esta na lista.")
	message.SetString(lang, messageKey(CodeInactiveCharacter), "O personagem {{.Name}} nao esta ativo.")
	message.SetString(lang, messageKey(CodeNoAssignmentComputed), "Nenhuma tarefa distribuida ainda. Distribua as tarefas primeiro.")
	message.SetString(lang, messageKey(CodeNotificationDispatchFailed), "Falha ao enviar as tarefas. Tente novamente.")
	message.SetString(lang, messageKey(CodeOutboxMessageNotFound), "A mensagem {{.MessageID}} nao foi encontrada na fila.")
}
