package dialog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznetsova/dobrobot/internal/domain"
	"github.com/mkuznetsova/dobrobot/internal/generation"
	"github.com/mkuznetsova/dobrobot/internal/session"
)

type fakeGenerator struct {
	postText  string
	postErr   error
	postCalls int
	lastPost  generation.PromptContext

	planText string
	planErr  error
	lastPlan generation.PlanPromptContext

	editedText string
	editErr    error
	lastEdit   generation.EditPromptContext

	image    []byte
	imageErr error

	card     []byte
	cardErr  error
	lastCard generation.CardRequest
}

func (f *fakeGenerator) GeneratePost(_ context.Context, pc generation.PromptContext) (string, error) {
	f.postCalls++
	f.lastPost = pc
	return f.postText, f.postErr
}

func (f *fakeGenerator) GeneratePlan(_ context.Context, pc generation.PlanPromptContext) (string, error) {
	f.lastPlan = pc
	return f.planText, f.planErr
}

func (f *fakeGenerator) EditText(_ context.Context, ec generation.EditPromptContext) (string, error) {
	f.lastEdit = ec
	return f.editedText, f.editErr
}

func (f *fakeGenerator) GenerateImage(_ context.Context, _ string) ([]byte, error) {
	return f.image, f.imageErr
}

func (f *fakeGenerator) RenderCard(_ context.Context, req generation.CardRequest) ([]byte, error) {
	f.lastCard = req
	return f.card, f.cardErr
}

type fakeOrgs struct {
	org     *domain.Organization
	getErr  error
	saved   *domain.Organization
	saveErr error
	deleted bool
}

func (f *fakeOrgs) Get(_ context.Context, _ int64) (*domain.Organization, error) {
	return f.org, f.getErr
}

func (f *fakeOrgs) CreateOrUpdate(_ context.Context, org *domain.Organization) (*domain.Organization, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saved = org
	return org, nil
}

func (f *fakeOrgs) Delete(_ context.Context, _ int64) (bool, error) {
	had := f.org != nil
	f.org = nil
	f.deleted = true
	return had, nil
}

func (f *fakeOrgs) Exists(_ context.Context, _ int64) (bool, error) {
	return f.org != nil, nil
}

type fakePlans struct {
	saved     *domain.ContentPlan
	savedText string
	saveErr   error
	list      []*domain.ContentPlan
	listErr   error
}

func (f *fakePlans) SaveGeneratedPlan(_ context.Context, userID int64, pc generation.PlanPromptContext, generated string) (*domain.ContentPlan, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.savedText = generated
	f.saved = &domain.ContentPlan{
		UserID: userID,
		Period: pc.Period,
		Items: []*domain.ContentPlanItem{
			{ContentTitle: "Сбор вещей"},
			{ContentTitle: "История успеха"},
		},
	}
	return f.saved, nil
}

func (f *fakePlans) ListForUser(_ context.Context, _ int64, _ bool) ([]*domain.ContentPlan, error) {
	return f.list, f.listErr
}

type machineFixture struct {
	m     *Machine
	gen   *fakeGenerator
	orgs  *fakeOrgs
	plans *fakePlans
	s     *session.Session
}

func newFixture(t *testing.T) *machineFixture {
	t.Helper()
	gen := &fakeGenerator{postText: "сгенерированный пост", planText: "план", editedText: "отредактировано"}
	orgs := &fakeOrgs{}
	plans := &fakePlans{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &machineFixture{
		m:     NewMachine(gen, orgs, plans, logger),
		gen:   gen,
		orgs:  orgs,
		plans: plans,
		s:     session.New(42),
	}
}

// send drives one text input through the machine.
func (f *machineFixture) send(t *testing.T, text string) *Result {
	t.Helper()
	res, err := f.m.Handle(context.Background(), f.s, Input{Text: text})
	require.NoError(t, err)
	require.NotEmpty(t, res.Messages)
	return res
}

func lastText(res *Result) string {
	return res.Messages[len(res.Messages)-1].Text
}

func TestStartResetsAnyState(t *testing.T) {
	f := newFixture(t)
	f.s.State = StateVolume
	f.s.Set(keyGoal, "что-то")

	res := f.send(t, "/start")

	assert.Equal(t, StateIdle, f.s.State)
	assert.Empty(t, f.s.Answers)
	assert.Contains(t, lastText(res), "Здравствуйте")
	assert.Contains(t, res.Messages[0].Keyboard, []string{MenuCreateContent})
}

func TestCancelResetsFromMidFlow(t *testing.T) {
	f := newFixture(t)
	f.send(t, MenuCreateContent)
	f.send(t, GoalOptions[0])
	require.Equal(t, StateAudience, f.s.State)

	res := f.send(t, CancelOption)

	assert.Equal(t, StateIdle, f.s.State)
	assert.Empty(t, f.s.Answers)
	assert.Contains(t, lastText(res), "отменено")
}

func TestInvalidTokenDoesNotAdvance(t *testing.T) {
	f := newFixture(t)
	f.send(t, MenuCreateContent)
	require.Equal(t, StateGoal, f.s.State)

	res := f.send(t, "какой-то произвольный текст")

	assert.Equal(t, StateGoal, f.s.State)
	assert.Empty(t, f.s.Answers[keyGoal])
	assert.Contains(t, lastText(res), "цель")
}

func TestMultiSelectToggleAndEmptyDone(t *testing.T) {
	f := newFixture(t)
	f.send(t, MenuCreateContent)
	f.send(t, GoalOptions[0])
	require.Equal(t, StateAudience, f.s.State)

	// Done with nothing selected re-prompts in place.
	res := f.send(t, DoneOption)
	assert.Equal(t, StateAudience, f.s.State)
	assert.Contains(t, lastText(res), "хотя бы один")

	// Selecting the same option twice is a no-op overall.
	f.send(t, AudienceOptions[0])
	f.send(t, AudienceOptions[1])
	f.send(t, AudienceOptions[0])
	assert.Equal(t, []string{AudienceOptions[1]}, f.s.GetStringList(keyAudience))

	f.send(t, DoneOption)
	assert.Equal(t, StatePlatform, f.s.State)
}

func TestQuestionnaireHappyPath(t *testing.T) {
	f := newFixture(t)
	f.send(t, MenuCreateContent)
	f.send(t, GoalOptions[0])
	f.send(t, AudienceOptions[1])
	f.send(t, DoneOption)
	f.send(t, PlatformOptions[1])
	f.send(t, FormatOptions[0])
	f.send(t, DoneOption)
	f.send(t, YesNoOptions[0])
	require.Equal(t, StateEventDetails, f.s.State)
	f.send(t, "Сбор вещей 25 ноября в ДК")
	f.send(t, VolumeOptions[0])
	require.Equal(t, StateDescription, f.s.State)

	res := f.send(t, "пост про сбор тёплых вещей")

	assert.Equal(t, StateConfirm, f.s.State)
	assert.Equal(t, "сгенерированный пост", lastText(res))
	assert.Equal(t, GoalOptions[0], f.gen.lastPost.Goal)
	assert.Equal(t, []string{AudienceOptions[1]}, f.gen.lastPost.Audience)
	assert.True(t, f.gen.lastPost.HasEvent)
	assert.Equal(t, "Сбор вещей 25 ноября в ДК", f.gen.lastPost.EventDetails)

	res = f.send(t, DoneOption)
	assert.Equal(t, StateIdle, f.s.State)
	assert.Equal(t, "сгенерированный пост", res.Messages[0].Text)
}

func TestQuestionnaireSkipsEventDetailsOnNo(t *testing.T) {
	f := newFixture(t)
	f.send(t, MenuCreateContent)
	f.send(t, GoalOptions[0])
	f.send(t, AudienceOptions[0])
	f.send(t, DoneOption)
	f.send(t, PlatformOptions[0])
	f.send(t, FormatOptions[0])
	f.send(t, DoneOption)

	f.send(t, YesNoOptions[1])

	assert.Equal(t, StateVolume, f.s.State)
	assert.Equal(t, false, f.s.GetBool(keyHasEvent))
}

func TestGenerationFailureKeepsStateForRetry(t *testing.T) {
	f := newFixture(t)
	f.send(t, MenuCreateContent)
	f.send(t, GoalOptions[0])
	f.send(t, AudienceOptions[0])
	f.send(t, DoneOption)
	f.send(t, PlatformOptions[0])
	f.send(t, FormatOptions[0])
	f.send(t, DoneOption)
	f.send(t, YesNoOptions[1])
	f.send(t, VolumeOptions[0])

	f.gen.postErr = errors.New("upstream down")
	res := f.send(t, "описание поста")

	assert.Equal(t, StateDescription, f.s.State)
	assert.Contains(t, lastText(res), "Не удалось")

	f.gen.postErr = nil
	res = f.send(t, "описание поста")
	assert.Equal(t, StateConfirm, f.s.State)
	assert.Equal(t, "сгенерированный пост", lastText(res))
	assert.Equal(t, 2, f.gen.postCalls)
}

func TestRegenerateAndEditLoop(t *testing.T) {
	f := newFixture(t)
	f.s.State = StateConfirm
	f.s.Set(keyGoal, GoalOptions[0])
	f.s.Set(keyGeneratedText, "первый вариант")

	f.send(t, ConfirmOptions[1])
	assert.Equal(t, StateConfirm, f.s.State)
	assert.Equal(t, "сгенерированный пост", f.s.GetString(keyGeneratedText))

	f.send(t, ConfirmOptions[2])
	require.Equal(t, StateEditText, f.s.State)

	res := f.send(t, "сделай короче")
	assert.Equal(t, StateConfirm, f.s.State)
	assert.Equal(t, "отредактировано", lastText(res))
	assert.Equal(t, "сгенерированный пост", f.gen.lastEdit.TextToEdit)
	assert.Equal(t, "сделай короче", f.gen.lastEdit.Details)
}

func TestWizardAttachesOrganization(t *testing.T) {
	f := newFixture(t)
	f.orgs.org = &domain.Organization{
		Name:        "Добрые руки",
		Description: "помогаем людям",
		Activities:  "сборы и акции",
		Contact:     "info@example.org",
	}

	f.send(t, MenuWizard)
	f.send(t, WizardModeOptions[0])
	f.send(t, YesNoOptions[0])

	assert.Equal(t, StateWizardEventType, f.s.State)
	assert.True(t, f.s.GetBool(keyHasNGOInfo))
	assert.Equal(t, "Добрые руки", f.s.GetString("ngo_name"))
}

func TestWizardWithoutProfileContinues(t *testing.T) {
	f := newFixture(t)

	f.send(t, MenuWizard)
	f.send(t, WizardModeOptions[0])
	res := f.send(t, YesNoOptions[0])

	assert.Equal(t, StateWizardEventType, f.s.State)
	assert.False(t, f.s.GetBool(keyHasNGOInfo))
	assert.Contains(t, res.Messages[0].Text, "нет профиля")
}

func TestWizardImageUploadAndCard(t *testing.T) {
	f := newFixture(t)
	f.gen.card = []byte{0x89, 'P', 'N', 'G'}
	f.s.State = StateWizardImageUpload
	f.s.Set(keyGeneratedText, "текст поста")
	f.s.Set(keyEventDate, "25.11")

	_, err := f.m.Handle(context.Background(), f.s, Input{Photo: []byte{1, 2, 3}})
	require.NoError(t, err)
	require.Equal(t, StateWizardFinalConfirm, f.s.State)

	res := f.send(t, FinalConfirmOptions[0])

	assert.Equal(t, StateIdle, f.s.State)
	assert.Equal(t, f.gen.card, res.Messages[0].Photo)
	assert.Equal(t, "текст поста", f.gen.lastCard.Text)
	assert.Equal(t, "25.11", f.gen.lastCard.EventDate)
	assert.Equal(t, []byte{1, 2, 3}, f.gen.lastCard.Image)
}

func TestCardFailureKeepsText(t *testing.T) {
	f := newFixture(t)
	f.gen.cardErr = errors.New("renderer down")
	f.s.State = StateWizardFinalConfirm
	f.s.Set(keyGeneratedText, "текст поста")

	res := f.send(t, FinalConfirmOptions[0])

	assert.Equal(t, StateIdle, f.s.State)
	assert.Contains(t, res.Messages[0].Text, "Не удалось собрать карточку")
	assert.Equal(t, "текст поста", res.Messages[1].Text)
}

func TestOrgCreateWithSkips(t *testing.T) {
	f := newFixture(t)

	f.send(t, MenuMyOrg)
	require.Equal(t, StateOrgName, f.s.State)
	f.send(t, "Добрые руки")
	f.send(t, SkipOption)
	f.send(t, SkipOption)
	res := f.send(t, SkipOption)
	require.Equal(t, StateOrgConfirm, f.s.State)
	assert.Contains(t, lastText(res), domain.Placeholder)

	f.send(t, YesNoOptions[0])

	assert.Equal(t, StateIdle, f.s.State)
	require.NotNil(t, f.orgs.saved)
	assert.Equal(t, "Добрые руки", f.orgs.saved.Name)
	assert.Empty(t, f.orgs.saved.Description)
}

func TestOrgValidationErrorStaysAtConfirm(t *testing.T) {
	f := newFixture(t)
	f.orgs.saveErr = &domain.ValidationError{Problems: []string{"название слишком длинное"}}
	f.s.State = StateOrgConfirm
	f.s.Set(keyOrgName, "х")

	res := f.send(t, YesNoOptions[0])

	assert.Equal(t, StateOrgConfirm, f.s.State)
	assert.Contains(t, lastText(res), "слишком длинное")
}

func TestOrgMenuShowsProfileAndDeletes(t *testing.T) {
	f := newFixture(t)
	f.orgs.org = &domain.Organization{Name: "Добрые руки", Description: "помощь", Activities: "сборы", Contact: "vk.com/dr"}

	res := f.send(t, MenuMyOrg)
	require.Equal(t, StateOrgMenu, f.s.State)
	assert.Contains(t, res.Messages[0].Text, "Добрые руки")

	res = f.send(t, OrgMenuOptions[1])
	assert.Equal(t, StateIdle, f.s.State)
	assert.True(t, f.orgs.deleted)
	assert.Contains(t, lastText(res), "удалён")
}

func TestPlanFlowSavesSchedule(t *testing.T) {
	f := newFixture(t)

	f.send(t, MenuCreatePlan)
	f.send(t, CustomOption)
	require.Equal(t, StatePlanCustomPeriod, f.s.State)
	f.send(t, "две недели")
	f.send(t, FrequencyOptions[0])
	f.send(t, "сборы, истории подопечных")
	res := f.send(t, SkipOption)

	assert.Equal(t, StateIdle, f.s.State)
	assert.Equal(t, "план", res.Messages[0].Text)
	assert.Contains(t, lastText(res), "2 публикаций")
	assert.Equal(t, "две недели", f.gen.lastPlan.Period)
	assert.Equal(t, FrequencyOptions[0], f.gen.lastPlan.Frequency)
	assert.Equal(t, "план", f.plans.savedText)
}

func TestPlanSaveFailureStillDeliversText(t *testing.T) {
	f := newFixture(t)
	f.plans.saveErr = errors.New("db down")
	f.s.State = StatePlanDetails
	f.s.Set(keyPlanPeriod, "Неделя")

	res := f.send(t, SkipOption)

	assert.Equal(t, StateIdle, f.s.State)
	assert.Equal(t, "план", res.Messages[0].Text)
	assert.Contains(t, lastText(res), "сохранить его не удалось")
}

func TestMyPlansLists(t *testing.T) {
	f := newFixture(t)
	f.plans.list = []*domain.ContentPlan{
		{PlanName: "Контент-план", Period: "Неделя", IsActive: true},
	}

	res := f.send(t, MenuMyPlans)

	assert.Equal(t, StateIdle, f.s.State)
	assert.Contains(t, res.Messages[0].Text, "Контент-план")
}

func TestUnknownStateFallsBackToMenu(t *testing.T) {
	f := newFixture(t)
	f.s.State = session.State("legacy_state")

	res := f.send(t, "привет")

	assert.Equal(t, StateIdle, f.s.State)
	assert.Contains(t, lastText(res), "меню")
}
