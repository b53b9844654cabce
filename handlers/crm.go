// ABOUTME: MCP tool handlers for creating and finding accounts, banners, contacts, and tasks
// ABOUTME: Writes go through the entity store so ids and versions are assigned there
package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/bannerbook/models"
	"github.com/harperreed/bannerbook/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type CRMHandlers struct {
	store *store.Store
}

func NewCRMHandlers(s *store.Store) *CRMHandlers {
	return &CRMHandlers{store: s}
}

type AddAccountInput struct {
	Name            string   `json:"name" jsonschema:"Account name (required)"`
	HQLocation      string   `json:"hq_location,omitempty" jsonschema:"Headquarters location"`
	AccountOwner    string   `json:"account_owner,omitempty" jsonschema:"Internal owner of the account"`
	Channel         string   `json:"channel,omitempty" jsonschema:"Retail channel, e.g. Grocery or Club"`
	Footprint       string   `json:"footprint,omitempty" jsonschema:"Store footprint, e.g. National or Regional"`
	OperatingStates []string `json:"operating_states,omitempty" jsonschema:"States the account operates in"`
	IsJBP           *bool    `json:"is_jbp,omitempty" jsonschema:"Whether a joint business plan is in place"`
	Notes           string   `json:"notes,omitempty" jsonschema:"Free-form notes"`
}

type AccountOutput struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Channel string   `json:"channel,omitempty"`
	Banners []string `json:"banners,omitempty"`
	Version int      `json:"version"`
}

func accountToOutput(a *models.Account) AccountOutput {
	out := AccountOutput{ID: a.ID, Name: a.Name, Channel: a.Channel, Version: a.Version}
	for _, b := range a.BannerBuyingOffices {
		out.Banners = append(out.Banners, b.Name)
	}
	return out
}

func (h *CRMHandlers) AddAccount(_ context.Context, _ *mcp.CallToolRequest, input AddAccountInput) (*mcp.CallToolResult, AccountOutput, error) {
	if input.Name == "" {
		return nil, AccountOutput{}, fmt.Errorf("name is required")
	}
	account := &models.Account{
		Name:         input.Name,
		HQLocation:   input.HQLocation,
		AccountOwner: input.AccountOwner,
		Notes:        input.Notes,
		Overridable: models.Overridable{
			Channel:         input.Channel,
			Footprint:       input.Footprint,
			OperatingStates: input.OperatingStates,
			IsJBP:           input.IsJBP,
		},
	}
	if err := h.store.SaveAccount(account); err != nil {
		return nil, AccountOutput{}, fmt.Errorf("failed to create account: %w", err)
	}
	return nil, accountToOutput(account), nil
}

type AddBannerInput struct {
	AccountID       string   `json:"account_id" jsonschema:"Account the banner belongs to (required)"`
	Name            string   `json:"name" jsonschema:"Banner or buying office name (required)"`
	Channel         string   `json:"channel,omitempty" jsonschema:"Overrides the account channel for this banner"`
	Footprint       string   `json:"footprint,omitempty" jsonschema:"Overrides the account footprint"`
	OperatingStates []string `json:"operating_states,omitempty" jsonschema:"Overrides the account operating states"`
	IsJBP           *bool    `json:"is_jbp,omitempty" jsonschema:"Overrides the account JBP flag; false is a real override"`
	HasPlanograms   *bool    `json:"has_planograms,omitempty" jsonschema:"Overrides the account planogram flag"`
}

type AddBannerOutput struct {
	AccountID string `json:"account_id"`
	BannerID  string `json:"banner_id"`
	Name      string `json:"name"`
}

func (h *CRMHandlers) AddBanner(_ context.Context, _ *mcp.CallToolRequest, input AddBannerInput) (*mcp.CallToolResult, AddBannerOutput, error) {
	if input.AccountID == "" || input.Name == "" {
		return nil, AddBannerOutput{}, fmt.Errorf("account_id and name are required")
	}
	account, err := h.store.GetAccount(input.AccountID)
	if err != nil {
		return nil, AddBannerOutput{}, fmt.Errorf("account not found: %w", err)
	}
	account.BannerBuyingOffices = append(account.BannerBuyingOffices, models.BannerBuyingOffice{
		Name: input.Name,
		Overridable: models.Overridable{
			Channel:         input.Channel,
			Footprint:       input.Footprint,
			OperatingStates: input.OperatingStates,
			IsJBP:           input.IsJBP,
			HasPlanograms:   input.HasPlanograms,
		},
	})
	if err := h.store.SaveAccount(account); err != nil {
		return nil, AddBannerOutput{}, fmt.Errorf("failed to save account: %w", err)
	}
	banner := account.BannerBuyingOffices[len(account.BannerBuyingOffices)-1]
	return nil, AddBannerOutput{AccountID: account.ID, BannerID: banner.ID, Name: banner.Name}, nil
}

type AddContactInput struct {
	AccountID        string `json:"account_id" jsonschema:"Account the contact works for (required)"`
	FirstName        string `json:"first_name" jsonschema:"First name (required)"`
	LastName         string `json:"last_name,omitempty" jsonschema:"Last name"`
	Email            string `json:"email,omitempty" jsonschema:"Email address"`
	Title            string `json:"title,omitempty" jsonschema:"Job title"`
	BannerID         string `json:"banner_id,omitempty" jsonschema:"Banner or buying office the contact buys for"`
	ManagerID        string `json:"manager_id,omitempty" jsonschema:"Contact id of this contact's manager"`
	IsPrimaryContact bool   `json:"is_primary_contact,omitempty" jsonschema:"Whether this is the account's primary contact"`
	Birthday         string `json:"birthday,omitempty" jsonschema:"Birthday as YYYY-MM-DD; enables a birthday reminder"`
	NextContactDate  string `json:"next_contact_date,omitempty" jsonschema:"Next scheduled touchpoint as YYYY-MM-DD; enables a reminder"`
}

type ContactOutput struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	BannerID  string `json:"banner_id,omitempty"`
}

func (h *CRMHandlers) AddContact(_ context.Context, _ *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.AccountID == "" || input.FirstName == "" {
		return nil, ContactOutput{}, fmt.Errorf("account_id and first_name are required")
	}
	if _, err := h.store.GetAccount(input.AccountID); err != nil {
		return nil, ContactOutput{}, fmt.Errorf("account not found: %w", err)
	}
	contact := &models.Contact{
		AccountID:            input.AccountID,
		FirstName:            input.FirstName,
		LastName:             input.LastName,
		Email:                input.Email,
		Title:                input.Title,
		BannerBuyingOfficeID: input.BannerID,
		ManagerID:            input.ManagerID,
		IsPrimaryContact:     input.IsPrimaryContact,
		Birthday:             input.Birthday,
		BirthdayAlert:        input.Birthday != "",
		NextContactDate:      input.NextContactDate,
		NextContactAlert:     input.NextContactDate != "",
	}
	if err := h.store.SaveContact(contact); err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to create contact: %w", err)
	}
	return nil, ContactOutput{
		ID:        contact.ID,
		AccountID: contact.AccountID,
		Name:      contact.Name(),
		Email:     contact.Email,
		BannerID:  contact.BannerBuyingOfficeID,
	}, nil
}

type AddTaskInput struct {
	Title       string `json:"title" jsonschema:"Task title (required)"`
	RelatedID   string `json:"related_id" jsonschema:"Account or contact id the task is about (required)"`
	RelatedType string `json:"related_type" jsonschema:"account or contact (required)"`
	DueDate     string `json:"due_date,omitempty" jsonschema:"Due date as YYYY-MM-DD"`
	AlertDays   int    `json:"alert_days,omitempty" jsonschema:"Days before the due date to start alerting (default 7)"`
	Priority    string `json:"priority,omitempty" jsonschema:"low, medium, or high"`
}

type TaskOutput struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Status  string `json:"status"`
	DueDate string `json:"due_date,omitempty"`
}

func (h *CRMHandlers) AddTask(_ context.Context, _ *mcp.CallToolRequest, input AddTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
	task := &models.Task{
		Title:        input.Title,
		RelatedID:    input.RelatedID,
		RelatedType:  input.RelatedType,
		DueDate:      input.DueDate,
		DueDateAlert: input.DueDate != "",
		AlertDays:    input.AlertDays,
		Priority:     input.Priority,
		Status:       models.TaskStatusPending,
	}
	if err := h.store.SaveTask(task); err != nil {
		return nil, TaskOutput{}, fmt.Errorf("failed to create task: %w", err)
	}
	return nil, TaskOutput{ID: task.ID, Title: task.Title, Status: task.Status, DueDate: task.DueDate}, nil
}

type UpdateTaskStatusInput struct {
	TaskID string `json:"task_id" jsonschema:"Task id (required)"`
	Status string `json:"status" jsonschema:"pending, in-progress, completed, or cancelled"`
}

func (h *CRMHandlers) UpdateTaskStatus(_ context.Context, _ *mcp.CallToolRequest, input UpdateTaskStatusInput) (*mcp.CallToolResult, TaskOutput, error) {
	task, err := h.store.GetTask(input.TaskID)
	if err != nil {
		return nil, TaskOutput{}, fmt.Errorf("task not found: %w", err)
	}
	if err := task.TransitionStatus(input.Status, time.Now()); err != nil {
		return nil, TaskOutput{}, err
	}
	if err := h.store.SaveTask(task); err != nil {
		return nil, TaskOutput{}, fmt.Errorf("failed to save task: %w", err)
	}
	return nil, TaskOutput{ID: task.ID, Title: task.Title, Status: task.Status, DueDate: task.DueDate}, nil
}

type FindAccountsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Case-insensitive substring of the account or banner name"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum results to return (default 10)"`
}

type FindAccountsOutput struct {
	Accounts []AccountOutput `json:"accounts"`
	Count    int             `json:"count"`
}

func (h *CRMHandlers) FindAccounts(_ context.Context, _ *mcp.CallToolRequest, input FindAccountsInput) (*mcp.CallToolResult, FindAccountsOutput, error) {
	if input.Limit == 0 {
		input.Limit = 10
	}
	accounts, err := h.store.ListAccounts()
	if err != nil {
		return nil, FindAccountsOutput{}, fmt.Errorf("failed to list accounts: %w", err)
	}

	q := strings.ToLower(input.Query)
	out := FindAccountsOutput{Accounts: []AccountOutput{}}
	for i := range accounts {
		if len(out.Accounts) >= input.Limit {
			break
		}
		if q != "" && !accountMatches(&accounts[i], q) {
			continue
		}
		out.Accounts = append(out.Accounts, accountToOutput(&accounts[i]))
	}
	out.Count = len(out.Accounts)
	return nil, out, nil
}

func accountMatches(a *models.Account, q string) bool {
	if strings.Contains(strings.ToLower(a.Name), q) {
		return true
	}
	for _, b := range a.BannerBuyingOffices {
		if strings.Contains(strings.ToLower(b.Name), q) {
			return true
		}
	}
	return false
}
