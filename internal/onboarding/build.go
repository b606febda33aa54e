package onboarding

import "strings"

// IsExperienced reports whether the declared type requires experience details.
func IsExperienced(experienceType string) bool {
	return strings.EqualFold(strings.TrimSpace(experienceType), "experienced")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// toOnboarding maps the request onto a new record. Experience details are
// kept only for experienced hires.
func (r Request) toOnboarding() *Onboarding {
	o := &Onboarding{Status: StatusPending}
	r.applyPersonal(o)
	r.applyDocuments(o)
	r.applySections(o)
	return o
}

func (r Request) applyPersonal(o *Onboarding) {
	o.Name = strings.TrimSpace(r.Name)
	o.DOB = r.DOB
	o.MaritalStatus = r.MaritalStatus
	o.Gender = r.Gender
	o.AadharNumber = strings.TrimSpace(r.AadharNumber)
	o.FatherName = r.FatherName
	o.MotherName = r.MotherName
	o.SpouseName = r.SpouseName
	o.CommunicationAddress = r.CommunicationAddress
	o.PermanentAddress = r.PermanentAddress
	o.LandlineNumber = r.LandlineNumber
	o.MobileNumber = r.MobileNumber
	o.Email = normalizeEmail(r.Email)
	o.BloodGroup = r.BloodGroup
	o.EmergencyContact1 = r.EmergencyContact1
	o.EmergencyContact2 = r.EmergencyContact2
	o.EducationQualification = r.EducationQualification
	o.DrivingLicense = r.DrivingLicense
	o.VehicleNumber = r.VehicleNumber
	o.AppliedRole = r.AppliedRole
	o.ExperienceType = r.ExperienceType
}

func (r Request) applyDocuments(o *Onboarding) {
	o.Documents = make([]Document, 0, len(r.Documents))
	for _, d := range r.Documents {
		o.Documents = append(o.Documents, Document{
			DocumentType: d.DocumentType,
			FilePath:     d.FilePath,
			FileName:     d.FileName,
		})
	}
}

// applySections replaces every child section except documents.
func (r Request) applySections(o *Onboarding) {
	o.Nominees = make([]Nominee, 0, len(r.Nominees))
	for _, n := range r.Nominees {
		o.Nominees = append(o.Nominees, Nominee{
			NomineeType:      n.NomineeType,
			Name:             n.Name,
			Age:              n.Age,
			DOB:              n.DOB,
			RelationshipType: n.RelationshipType,
		})
	}

	o.Family = make([]FamilyMember, 0, len(r.Family))
	for _, f := range r.Family {
		o.Family = append(o.Family, FamilyMember{
			Name:             f.Name,
			DOB:              f.DOB,
			RelationshipType: f.RelationshipType,
		})
	}

	o.References = make([]Reference, 0, len(r.References))
	for _, ref := range r.References {
		o.References = append(o.References, Reference{
			Name:                      ref.Name,
			Designation:               ref.Designation,
			Phone:                     ref.Phone,
			Email:                     ref.Email,
			LastEmployer:              ref.LastEmployer,
			RelationshipWithCandidate: ref.RelationshipWithCandidate,
		})
	}

	o.Bank = nil
	if b := r.Bank; b != nil {
		o.Bank = &Bank{
			AccountName:   b.AccountName,
			AccountNumber: b.AccountNumber,
			IFSCCode:      b.IFSCCode,
			BranchName:    b.BranchName,
		}
	}

	o.Checklist = nil
	if c := r.Checklist; c != nil {
		o.Checklist = &Checklist{
			ExperienceType:            c.ExperienceType,
			AadharCard:                c.AadharCard,
			QualificationCertificates: c.QualificationCertificates,
			BankAccountProof:          c.BankAccountProof,
			PanCard:                   c.PanCard,
			PassportSizePhoto:         c.PassportSizePhoto,
			EmployeeReference:         c.EmployeeReference,
			InternshipProof:           c.InternshipProof,
			Last3MonthsPaySlips:       c.Last3MonthsPaySlips,
			OfferLetter:               c.OfferLetter,
			HikeLetter:                c.HikeLetter,
			ExperienceLetter:          c.ExperienceLetter,
			RelievingLetter:           c.RelievingLetter,
		}
	}

	o.ExperienceDetails = nil
	if e := r.ExperienceDetails; e != nil && IsExperienced(r.ExperienceType) {
		o.ExperienceDetails = &ExperienceDetails{
			CompanyName:     e.CompanyName,
			JobRole:         e.JobRole,
			DateOfJoining:   e.DateOfJoining,
			DateOfExit:      e.DateOfExit,
			TotalExperience: e.TotalExperience,
			ESINumber:       e.ESINumber,
			UANNumber:       e.UANNumber,
		}
	}
}
