package onboarding

import (
	"time"

	"github.com/kishorebabuysk/VF-Backend/internal/types"

	"github.com/uptrace/bun"
)

const StatusPending = "pending"

type Onboarding struct {
	bun.BaseModel `bun:"table:onboarding,alias:o"`

	ID                     int        `bun:"id,pk,autoincrement" json:"id"`
	Name                   string     `bun:"name,notnull" json:"name"`
	DOB                    types.Date `bun:"dob,type:date,notnull" json:"dob"`
	MaritalStatus          *string    `bun:"marital_status" json:"marital_status"`
	Gender                 string     `bun:"gender,notnull" json:"gender"`
	AadharNumber           string     `bun:"aadhar_number,notnull,unique" json:"aadhar_number"`
	FatherName             *string    `bun:"father_name" json:"father_name"`
	MotherName             *string    `bun:"mother_name" json:"mother_name"`
	SpouseName             *string    `bun:"spouse_name" json:"spouse_name"`
	CommunicationAddress   string     `bun:"communication_address,type:text,notnull" json:"communication_address"`
	PermanentAddress       string     `bun:"permanent_address,type:text,notnull" json:"permanent_address"`
	LandlineNumber         *string    `bun:"landline_number" json:"landline_number"`
	MobileNumber           string     `bun:"mobile_number,notnull" json:"mobile_number"`
	Email                  string     `bun:"email,notnull,unique" json:"email"`
	BloodGroup             *string    `bun:"blood_group" json:"blood_group"`
	EmergencyContact1      string     `bun:"emergency_contact1,notnull" json:"emergency_contact1"`
	EmergencyContact2      *string    `bun:"emergency_contact2" json:"emergency_contact2"`
	EducationQualification *string    `bun:"education_qualification" json:"education_qualification"`
	DrivingLicense         *string    `bun:"driving_license" json:"driving_license"`
	VehicleNumber          *string    `bun:"vehicle_number" json:"vehicle_number"`
	AppliedRole            string     `bun:"applied_role,notnull" json:"applied_role"`
	ExperienceType         string     `bun:"experience_type,notnull" json:"experience_type"`
	Status                 string     `bun:"status,notnull" json:"status"`
	CreatedAt              time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`

	Documents         []Document         `bun:"rel:has-many,join:id=onboarding_id" json:"documents"`
	Nominees          []Nominee          `bun:"rel:has-many,join:id=onboarding_id" json:"nominees"`
	Family            []FamilyMember     `bun:"rel:has-many,join:id=onboarding_id" json:"family"`
	References        []Reference        `bun:"rel:has-many,join:id=onboarding_id" json:"references"`
	Bank              *Bank              `bun:"rel:has-one,join:id=onboarding_id" json:"bank"`
	Checklist         *Checklist         `bun:"rel:has-one,join:id=onboarding_id" json:"checklist"`
	ExperienceDetails *ExperienceDetails `bun:"rel:has-one,join:id=onboarding_id" json:"experience_details"`
}

func (o *Onboarding) ensureChildren() {
	if o.Documents == nil {
		o.Documents = []Document{}
	}
	if o.Nominees == nil {
		o.Nominees = []Nominee{}
	}
	if o.Family == nil {
		o.Family = []FamilyMember{}
	}
	if o.References == nil {
		o.References = []Reference{}
	}
}

// setOwner points every child row at the parent id.
func (o *Onboarding) setOwner() {
	for i := range o.Documents {
		o.Documents[i].OnboardingID = o.ID
	}
	for i := range o.Nominees {
		o.Nominees[i].OnboardingID = o.ID
	}
	for i := range o.Family {
		o.Family[i].OnboardingID = o.ID
	}
	for i := range o.References {
		o.References[i].OnboardingID = o.ID
	}
	if o.Bank != nil {
		o.Bank.OnboardingID = o.ID
	}
	if o.Checklist != nil {
		o.Checklist.OnboardingID = o.ID
	}
	if o.ExperienceDetails != nil {
		o.ExperienceDetails.OnboardingID = o.ID
	}
}

type Document struct {
	bun.BaseModel `bun:"table:onboarding_documents,alias:od"`

	ID           int       `bun:"id,pk,autoincrement" json:"id"`
	OnboardingID int       `bun:"onboarding_id,notnull" json:"onboarding_id"`
	DocumentType string    `bun:"document_type,notnull" json:"document_type"`
	FilePath     string    `bun:"file_path,notnull" json:"file_path"`
	FileName     *string   `bun:"file_name" json:"file_name"`
	UploadedAt   time.Time `bun:"uploaded_at,notnull,default:current_timestamp" json:"uploaded_at"`
}

type Nominee struct {
	bun.BaseModel `bun:"table:onboarding_nominees,alias:onm"`

	ID               int        `bun:"id,pk,autoincrement" json:"id"`
	OnboardingID     int        `bun:"onboarding_id,notnull" json:"onboarding_id"`
	NomineeType      string     `bun:"nominee_type,notnull" json:"nominee_type"`
	Name             string     `bun:"name,notnull" json:"name"`
	Age              *int       `bun:"age" json:"age"`
	DOB              types.Date `bun:"dob,type:date,notnull" json:"dob"`
	RelationshipType string     `bun:"relationship_type,notnull" json:"relationship_type"`
}

type FamilyMember struct {
	bun.BaseModel `bun:"table:onboarding_family,alias:ofm"`

	ID               int        `bun:"id,pk,autoincrement" json:"id"`
	OnboardingID     int        `bun:"onboarding_id,notnull" json:"onboarding_id"`
	Name             string     `bun:"name,notnull" json:"name"`
	DOB              types.Date `bun:"dob,type:date,notnull" json:"dob"`
	RelationshipType string     `bun:"relationship_type,notnull" json:"relationship_type"`
}

type Bank struct {
	bun.BaseModel `bun:"table:onboarding_bank,alias:obk"`

	ID            int    `bun:"id,pk,autoincrement" json:"id"`
	OnboardingID  int    `bun:"onboarding_id,notnull" json:"onboarding_id"`
	AccountName   string `bun:"account_name,notnull" json:"account_name"`
	AccountNumber string `bun:"account_number,notnull" json:"account_number"`
	IFSCCode      string `bun:"ifsc_code,notnull" json:"ifsc_code"`
	BranchName    string `bun:"branch_name,notnull" json:"branch_name"`
}

type Reference struct {
	bun.BaseModel `bun:"table:onboarding_references,alias:orf"`

	ID                        int     `bun:"id,pk,autoincrement" json:"id"`
	OnboardingID              int     `bun:"onboarding_id,notnull" json:"onboarding_id"`
	Name                      string  `bun:"name,notnull" json:"name"`
	Designation               string  `bun:"designation,notnull" json:"designation"`
	Phone                     string  `bun:"phone,notnull" json:"phone"`
	Email                     *string `bun:"email" json:"email"`
	LastEmployer              string  `bun:"last_employer,notnull" json:"last_employer"`
	RelationshipWithCandidate string  `bun:"relationship_with_candidate,notnull" json:"relationship_with_candidate"`
}

// Checklist tracks which physical documents a hire has handed in. The
// internship flag applies to freshers, the last five to experienced hires.
type Checklist struct {
	bun.BaseModel `bun:"table:onboarding_checklist,alias:ock"`

	ID                        int    `bun:"id,pk,autoincrement" json:"id"`
	OnboardingID              int    `bun:"onboarding_id,notnull" json:"onboarding_id"`
	ExperienceType            string `bun:"experience_type,notnull" json:"experience_type"`
	AadharCard                bool   `bun:"aadhar_card,notnull" json:"aadhar_card"`
	QualificationCertificates bool   `bun:"qualification_certificates,notnull" json:"qualification_certificates"`
	BankAccountProof          bool   `bun:"bank_account_proof,notnull" json:"bank_account_proof"`
	PanCard                   bool   `bun:"pan_card,notnull" json:"pan_card"`
	PassportSizePhoto         bool   `bun:"passport_size_photo,notnull" json:"passport_size_photo"`
	EmployeeReference         bool   `bun:"employee_reference,notnull" json:"employee_reference"`
	InternshipProof           bool   `bun:"internship_proof,notnull" json:"internship_proof"`
	Last3MonthsPaySlips       bool   `bun:"last_3_months_pay_slips,notnull" json:"last_3_months_pay_slips"`
	OfferLetter               bool   `bun:"offer_letter,notnull" json:"offer_letter"`
	HikeLetter                bool   `bun:"hike_letter,notnull" json:"hike_letter"`
	ExperienceLetter          bool   `bun:"experience_letter,notnull" json:"experience_letter"`
	RelievingLetter           bool   `bun:"relieving_letter,notnull" json:"relieving_letter"`
}

type ExperienceDetails struct {
	bun.BaseModel `bun:"table:onboarding_experience_details,alias:oxd"`

	ID              int        `bun:"id,pk,autoincrement" json:"id"`
	OnboardingID    int        `bun:"onboarding_id,notnull" json:"onboarding_id"`
	CompanyName     string     `bun:"company_name,notnull" json:"company_name"`
	JobRole         string     `bun:"job_role,notnull" json:"job_role"`
	DateOfJoining   types.Date `bun:"date_of_joining,type:date,notnull" json:"date_of_joining"`
	DateOfExit      types.Date `bun:"date_of_exit,type:date,notnull" json:"date_of_exit"`
	TotalExperience string     `bun:"total_experience,notnull" json:"total_experience"`
	ESINumber       *string    `bun:"esi_number" json:"esi_number"`
	UANNumber       *string    `bun:"uan_number" json:"uan_number"`
}

type DocumentInput struct {
	DocumentType string  `json:"document_type" validate:"required"`
	FilePath     string  `json:"file_path" validate:"required"`
	FileName     *string `json:"file_name"`
}

type NomineeInput struct {
	NomineeType      string     `json:"nominee_type" validate:"required"`
	Name             string     `json:"name" validate:"required"`
	Age              *int       `json:"age" validate:"omitempty,gte=0"`
	DOB              types.Date `json:"dob" validate:"required"`
	RelationshipType string     `json:"relationship_type" validate:"required"`
}

type FamilyInput struct {
	Name             string     `json:"name" validate:"required"`
	DOB              types.Date `json:"dob" validate:"required"`
	RelationshipType string     `json:"relationship_type" validate:"required"`
}

type BankInput struct {
	AccountName   string `json:"account_name" validate:"required"`
	AccountNumber string `json:"account_number" validate:"required"`
	IFSCCode      string `json:"ifsc_code" validate:"required"`
	BranchName    string `json:"branch_name" validate:"required"`
}

type ReferenceInput struct {
	Name                      string  `json:"name" validate:"required"`
	Designation               string  `json:"designation" validate:"required"`
	Phone                     string  `json:"phone" validate:"required"`
	Email                     *string `json:"email" validate:"omitempty,email"`
	LastEmployer              string  `json:"last_employer" validate:"required"`
	RelationshipWithCandidate string  `json:"relationship_with_candidate" validate:"required"`
}

type ChecklistInput struct {
	ExperienceType            string `json:"experience_type" validate:"required"`
	AadharCard                bool   `json:"aadhar_card"`
	QualificationCertificates bool   `json:"qualification_certificates"`
	BankAccountProof          bool   `json:"bank_account_proof"`
	PanCard                   bool   `json:"pan_card"`
	PassportSizePhoto         bool   `json:"passport_size_photo"`
	EmployeeReference         bool   `json:"employee_reference"`
	InternshipProof           bool   `json:"internship_proof"`
	Last3MonthsPaySlips       bool   `json:"last_3_months_pay_slips"`
	OfferLetter               bool   `json:"offer_letter"`
	HikeLetter                bool   `json:"hike_letter"`
	ExperienceLetter          bool   `json:"experience_letter"`
	RelievingLetter           bool   `json:"relieving_letter"`
}

type ExperienceDetailsInput struct {
	CompanyName     string     `json:"company_name" validate:"required"`
	JobRole         string     `json:"job_role" validate:"required"`
	DateOfJoining   types.Date `json:"date_of_joining" validate:"required"`
	DateOfExit      types.Date `json:"date_of_exit" validate:"required"`
	TotalExperience string     `json:"total_experience" validate:"required"`
	ESINumber       *string    `json:"esi_number"`
	UANNumber       *string    `json:"uan_number"`
}

// Request is the full composite used for both create and replace.
type Request struct {
	Name                   string     `json:"name" validate:"required"`
	DOB                    types.Date `json:"dob" validate:"required"`
	MaritalStatus          *string    `json:"marital_status"`
	Gender                 string     `json:"gender" validate:"required"`
	AadharNumber           string     `json:"aadhar_number" validate:"required"`
	FatherName             *string    `json:"father_name"`
	MotherName             *string    `json:"mother_name"`
	SpouseName             *string    `json:"spouse_name"`
	CommunicationAddress   string     `json:"communication_address" validate:"required"`
	PermanentAddress       string     `json:"permanent_address" validate:"required"`
	LandlineNumber         *string    `json:"landline_number"`
	MobileNumber           string     `json:"mobile_number" validate:"required"`
	Email                  string     `json:"email" validate:"required,email"`
	BloodGroup             *string    `json:"blood_group"`
	EmergencyContact1      string     `json:"emergency_contact1" validate:"required"`
	EmergencyContact2      *string    `json:"emergency_contact2"`
	EducationQualification *string    `json:"education_qualification"`
	DrivingLicense         *string    `json:"driving_license"`
	VehicleNumber          *string    `json:"vehicle_number"`
	AppliedRole            string     `json:"applied_role" validate:"required"`
	ExperienceType         string     `json:"experience_type" validate:"required"`

	Documents         []DocumentInput         `json:"documents" validate:"omitempty,dive"`
	Nominees          []NomineeInput          `json:"nominees" validate:"omitempty,dive"`
	Family            []FamilyInput           `json:"family" validate:"omitempty,dive"`
	Bank              *BankInput              `json:"bank"`
	References        []ReferenceInput        `json:"references" validate:"omitempty,dive"`
	Checklist         *ChecklistInput         `json:"checklist"`
	ExperienceDetails *ExperienceDetailsInput `json:"experience_details"`
}

type DocumentsResponse struct {
	OnboardingID int        `json:"onboarding_id"`
	Count        int        `json:"count"`
	Documents    []Document `json:"documents"`
}

type UploadResponse struct {
	Message   string     `json:"message"`
	Count     int        `json:"count"`
	Documents []Document `json:"documents"`
}

type SubmittedEvent struct {
	OnboardingID int    `json:"onboarding_id"`
	Email        string `json:"email"`
	AppliedRole  string `json:"applied_role"`
}
