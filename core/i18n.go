package core

import (
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	"github.com/pkg/errors"
)

// Action is a primary CRUD action, as named in user notifications.
type Action string

const (
	ActionList   Action = "list"
	ActionGet    Action = "get"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

var action2Gerund = map[Action]string{
	ActionList:   "listing",
	ActionGet:    "getting",
	ActionCreate: "creating",
	ActionUpdate: "updating",
	ActionDelete: "deleting",
}

// Entity names, as used in OperationError.Entity.
const (
	EntityAcademicPeriod    = "academic period"
	EntitySubject           = "subject"
	EntityAnnualPlan        = "annual plan"
	EntityTeachingPlan      = "teaching plan"
	EntityLessonPlan        = "lesson plan"
	EntityAssessment        = "assessment"
	EntityStudentAssessment = "student assessment"
	EntityCalendarEvent     = "calendar event"
	EntityMaterial          = "material"
)

var (
	operationTexts = map[string]map[Action]string{
		"en": {
			ActionList:   "error listing {0}s",
			ActionGet:    "error getting {0}",
			ActionCreate: "error creating {0}",
			ActionUpdate: "error updating {0}",
			ActionDelete: "error deleting {0}",
		},
		"pt_BR": {
			ActionList:   "erro ao listar {0}",
			ActionGet:    "erro ao buscar {0}",
			ActionCreate: "erro ao criar {0}",
			ActionUpdate: "erro ao atualizar {0}",
			ActionDelete: "erro ao excluir {0}",
		},
	}

	entityTexts = map[string]map[string]string{
		"en": {},
		"pt_BR": {
			EntityAcademicPeriod:    "período letivo",
			EntitySubject:           "disciplina",
			EntityAnnualPlan:        "plano anual",
			EntityTeachingPlan:      "plano de ensino",
			EntityLessonPlan:        "plano de aula",
			EntityAssessment:        "avaliação",
			EntityStudentAssessment: "nota do aluno",
			EntityCalendarEvent:     "evento",
			EntityMaterial:          "material",
		},
	}
)

// NewTranslator returns the translator of locale (en | pt_BR), with every operation and entity
// text registered.
func NewTranslator(locale string) (ut.Translator, error) {
	_en := en.New()
	uni := ut.New(_en, _en, pt_BR.New())
	translator, found := uni.GetTranslator(locale)
	if !found {
		return nil, errors.Errorf("no translator for locale %q", locale)
	}
	if err := registerOperationTexts(translator); err != nil {
		return nil, errors.Wrap(err, "registering operation texts")
	}
	return translator, nil
}

func registerOperationTexts(t ut.Translator) error {
	texts, ok := operationTexts[t.Locale()]
	if !ok {
		texts = operationTexts["en"]
	}
	for action, text := range texts {
		if err := t.Add("op."+string(action), text, false); err != nil {
			return err
		}
	}
	for entity, text := range entityTexts[t.Locale()] {
		if err := t.Add("entity."+entity, text, false); err != nil {
			return err
		}
	}
	return nil
}

// TranslateOperationError renders err as a human readable notification naming the action and
// entity attempted ("error creating assessment", "erro ao criar avaliação").
func TranslateOperationError(t ut.Translator, err *OperationError) string {
	entity, tErr := t.T("entity." + err.Entity)
	if tErr != nil || entity == "" {
		entity = err.Entity
	}
	msg, tErr := t.T("op."+string(err.Action), entity)
	if tErr != nil || msg == "" {
		return "error " + action2Gerund[err.Action] + " " + entity
	}
	return msg
}
