package i18n

var ptBRCatalog = &Catalog{
	locale: "pt-BR",
	messages: map[Code]string{
		CodeRecipeTitleEmpty:              "O título da receita não pode ficar vazio",
		CodeRecipeInvalidStatus:           "Status de receita inválido",
		CodeRecipeInvalidStatusTransition: "Não é possível mover a receita de {{.FromStatus}} para {{.ToStatus}}",
		CodeRecipeTransitionForbidden:     "Mover uma receita de {{.FromStatus}} para {{.ToStatus}} exige um aprovador",
		CodeRecipeUnknown:                 "A receita {{.RecipeID}} não foi encontrada",
		CodePlanUserRequired:              "Um plano semanal precisa de um usuário responsável",
		CodePlanInvalidWeekStart:          "A data de início da semana é inválida",
		CodePlanInvalidStatus:             "Status de plano semanal inválido",
		CodePlanInvalidStatusTransition:   "Não é possível mover o plano de {{.FromStatus}} para {{.ToStatus}}",
		CodePlanLocked:                    "Este plano está {{.PlanStatus}} e não pode mais ser editado",
		CodeMealInvalidType:               "Tipo de refeição inválido",
		CodeMealInvalidStatus:             "Status de refeição inválido",
		CodeMealSlotDuplicate:             "Este plano já tem uma refeição {{.MealType}} em {{.Day}}",
		CodeMealSlotDayOutOfRange:         "O dia {{.Day}} está fora da semana do plano",
		CodeMealSwitchNoOp:                "A refeição já usa esta receita",
		CodeAlternativeInvalidReason:      "Motivo de alternativa inválido",
		CodeChangeInvalidType:             "Tipo de alteração inválido",
		CodeChangeEmpty:                   "Um registro de alteração precisa de um valor anterior ou novo",
		CodeChangeMissingRecipeReference:  "Uma troca de receita precisa da receita anterior e da nova",
		CodeUnauthenticated:               "Entre na sua conta para continuar",
		CodeNotFound:                      "O registro solicitado não foi encontrado",
		CodeStorageFailure:                "Algo deu errado ao salvar suas alterações, tente novamente",
	},
}
