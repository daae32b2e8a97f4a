package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"golang.org/x/oauth2"

	echoapi "github.com/serafinsanchez/googleclassroom-portal/apps/api/echo"
	"github.com/serafinsanchez/googleclassroom-portal/core"
	"github.com/serafinsanchez/googleclassroom-portal/core/account"
	"github.com/serafinsanchez/googleclassroom-portal/core/classroom"
	"github.com/serafinsanchez/googleclassroom-portal/core/drive"
	"github.com/serafinsanchez/googleclassroom-portal/core/writing"
	appfs "github.com/serafinsanchez/googleclassroom-portal/fs"
	emailsvc "github.com/serafinsanchez/googleclassroom-portal/services/email"
	googlesvc "github.com/serafinsanchez/googleclassroom-portal/services/google"
	llmsvc "github.com/serafinsanchez/googleclassroom-portal/services/llm"
	logsvc "github.com/serafinsanchez/googleclassroom-portal/services/logger"
	"github.com/serafinsanchez/googleclassroom-portal/storage/database"
	inmemdb "github.com/serafinsanchez/googleclassroom-portal/storage/database/inmem"
	sqlxrepos "github.com/serafinsanchez/googleclassroom-portal/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Storage holds the database the repositories run on: Postgres, or memory when database.inMemory is set.
type Storage struct {
	DB  *sqlx.DB
	Mem *inmemdb.DB
}

func (s *Storage) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newStorage(conf *core.Config, loggerParam DBLoggerParam) *Storage {
	if conf.Database.InMemory {
		loggerParam.Logger.Warn("using the in-memory database: accounts are lost on restart")
		return &Storage{Mem: inmemdb.Open()}
	}

	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db.DB, "up"); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return &Storage{DB: db}
}

func newAccountRepository(s *Storage) account.Repository {
	if s.Mem != nil {
		return inmemdb.NewAccountRepository(s.Mem)
	}
	return sqlxrepos.NewAccountRepository(s.DB)
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	classroom.InitValidators(validate, translator)
	return validate
}

func newAccountService(conf *core.Config, repo account.Repository, validate *validator.Validate, logger core.Logger) *account.Service {
	return account.NewService(repo, validate, logger, conf.SecretKey)
}

func newClassroomService(conf *core.Config, logger core.Logger, validate *validator.Validate, mailSvc core.EmailService) *classroom.Service {
	opts := classroom.Options{
		MaxConcurrency: conf.Classroom.MaxConcurrency,
		PageSize:       conf.Classroom.PageSize,
	}
	return classroom.NewService(opts, logger, validate, mailSvc)
}

// newGeminiModel returns nil when no Gemini API key is configured.
func newGeminiModel(conf *core.Config, logger core.Logger) *llmsvc.GeminiModel {
	model, err := llmsvc.NewGeminiModel(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up gemini: %v", err), err)
	}
	if model == nil {
		logger.Warn("gemini.apiKey not set: writing analysis is disabled")
	}
	return model
}

func newWritingService(gemini *llmsvc.GeminiModel, validate *validator.Validate, logger core.Logger) *writing.Service {
	var model writing.Model
	if gemini != nil {
		model = gemini
	}
	return writing.NewService(model, validate, logger)
}

func newClients(oauth *oauth2.Config, accounts *account.Service) *googlesvc.Clients {
	return googlesvc.NewClients(oauth, accounts)
}

type ServerDepsParam struct {
	dig.In
	Conf         *core.Config
	Logger       core.Logger
	Validate     *validator.Validate
	Translator   ut.Translator
	AccountSvc   *account.Service
	ClassroomSvc *classroom.Service
	DriveSvc     *drive.Service
	WritingSvc   *writing.Service
	Clients      *googlesvc.Clients
	Identity     *googlesvc.IdentityProvider
}

func newServerDeps(p ServerDepsParam) *echoapi.Deps {
	return &echoapi.Deps{
		Conf:         p.Conf,
		Logger:       p.Logger,
		Validate:     p.Validate,
		Translator:   p.Translator,
		AccountSvc:   p.AccountSvc,
		ClassroomSvc: p.ClassroomSvc,
		DriveSvc:     p.DriveSvc,
		WritingSvc:   p.WritingSvc,
		Clients:      p.Clients,
		Identity:     p.Identity,
	}
}

func parseEmailTemplates(conf *core.Config, logger core.Logger) {
	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf, logger)
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStorage))
	must(c.Provide(newAccountRepository))
	must(c.Provide(newEmailService))
	must(c.Provide(newTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newAccountService))
	must(c.Provide(newClassroomService))
	must(c.Provide(drive.NewService))
	must(c.Provide(newGeminiModel))
	must(c.Provide(newWritingService))
	must(c.Provide(googlesvc.NewOAuthConfig))
	must(c.Provide(googlesvc.NewIdentityProvider))
	must(c.Provide(newClients))
	must(c.Provide(newServerDeps))
	must(c.Provide(echoapi.NewServer))
	must(c.Invoke(parseEmailTemplates))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
