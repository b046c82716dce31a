package services

import "github.com/yigit/unicampus/internal/app/models"

func def(name, displayName string, dataType models.DataType, category models.Category, required bool, entityTypes ...models.EntityType) models.AttributeDefinition {
	return models.AttributeDefinition{
		Name:        name,
		DisplayName: displayName,
		DataType:    dataType,
		Category:    category,
		EntityTypes: entityTypes,
		IsRequired:  required,
	}
}

// AttributeCatalog returns the predefined attribute definitions for every entity kind
func AttributeCatalog() []models.AttributeDefinition {
	const (
		student      = models.EntityTypeStudent
		staff        = models.EntityTypeStaff
		parent       = models.EntityTypeParent
		course       = models.EntityTypeCourse
		department   = models.EntityTypeDepartment
		assessment   = models.EntityTypeAssessment
		assignment   = models.EntityTypeAssignment
		event        = models.EntityTypeEvent
		announcement = models.EntityTypeAnnouncement
		room         = models.EntityTypeRoom
		building     = models.EntityTypeBuilding
	)

	return []models.AttributeDefinition{
		// People
		def("firstName", "First Name", models.DataTypeString, models.CategoryPersonal, true, student, staff, parent),
		def("lastName", "Last Name", models.DataTypeString, models.CategoryPersonal, true, student, staff, parent),
		def("dateOfBirth", "Date of Birth", models.DataTypeDate, models.CategoryPersonal, false, student, staff),
		def("gender", "Gender", models.DataTypeString, models.CategoryPersonal, false, student, staff, parent),
		def("nationality", "Nationality", models.DataTypeString, models.CategoryPersonal, false, student, staff),
		def("address", "Address", models.DataTypeText, models.CategoryContact, false, student, staff, parent),
		def("email", "Email", models.DataTypeEmail, models.CategoryContact, false, student, staff, parent),
		def("phone", "Phone", models.DataTypePhone, models.CategoryContact, false, student, staff, parent),
		def("emergencyContact", "Emergency Contact", models.DataTypeString, models.CategoryContact, false, student, staff),
		def("emergencyPhone", "Emergency Phone", models.DataTypePhone, models.CategoryContact, false, student, staff),
		def("occupation", "Occupation", models.DataTypeString, models.CategoryPersonal, false, parent),
		def("relationship", "Relationship", models.DataTypeString, models.CategoryPersonal, false, parent),

		// Students
		def("studentId", "Student ID", models.DataTypeString, models.CategoryAcademic, false, student),
		def("enrollmentDate", "Enrollment Date", models.DataTypeDate, models.CategoryAcademic, false, student),
		def("program", "Program", models.DataTypeString, models.CategoryAcademic, false, student),
		def("yearLevel", "Year Level", models.DataTypeNumber, models.CategoryAcademic, false, student),
		def("gpa", "GPA", models.DataTypeNumber, models.CategoryAcademic, false, student),
		def("graduationDate", "Graduation Date", models.DataTypeDate, models.CategoryAcademic, false, student),
		def("academicStatus", "Academic Status", models.DataTypeString, models.CategoryAcademic, false, student),

		// Staff
		def("employeeId", "Employee ID", models.DataTypeString, models.CategoryEmployment, false, staff),
		def("position", "Position", models.DataTypeString, models.CategoryEmployment, false, staff),
		def("hireDate", "Hire Date", models.DataTypeDate, models.CategoryEmployment, false, staff),
		def("employmentType", "Employment Type", models.DataTypeString, models.CategoryEmployment, false, staff),
		def("salary", "Salary", models.DataTypeNumber, models.CategoryEmployment, false, staff),
		def("qualifications", "Qualifications", models.DataTypeText, models.CategoryEmployment, false, staff),
		def("specialization", "Specialization", models.DataTypeString, models.CategoryEmployment, false, staff),
		def("officeLocation", "Office Location", models.DataTypeString, models.CategoryFacility, false, staff),
		def("officeHours", "Office Hours", models.DataTypeString, models.CategorySchedule, false, staff),

		// Courses
		def("courseName", "Course Name", models.DataTypeString, models.CategoryAcademic, false, course),
		def("courseCode", "Course Code", models.DataTypeString, models.CategoryAcademic, false, course),
		def("title", "Title", models.DataTypeString, models.CategoryAcademic, false, course, assessment, assignment, event, announcement),
		def("credits", "Credits", models.DataTypeNumber, models.CategoryAcademic, false, course),
		def("semester", "Semester", models.DataTypeString, models.CategorySchedule, false, course),
		def("academicYear", "Academic Year", models.DataTypeString, models.CategorySchedule, false, course),
		def("schedule", "Schedule", models.DataTypeString, models.CategorySchedule, false, course),
		def("capacity", "Capacity", models.DataTypeNumber, models.CategoryFacility, false, course, room, event),
		def("syllabus", "Syllabus", models.DataTypeText, models.CategoryAcademic, false, course),

		// Departments and facilities
		def("code", "Code", models.DataTypeString, models.CategoryAcademic, false, course, department, room, building),
		def("budget", "Budget", models.DataTypeNumber, models.CategoryAcademic, false, department),
		def("website", "Website", models.DataTypeURL, models.CategoryContact, false, department),
		def("roomNumber", "Room Number", models.DataTypeString, models.CategoryFacility, false, room),
		def("roomType", "Room Type", models.DataTypeString, models.CategoryFacility, false, room),
		def("floor", "Floor", models.DataTypeNumber, models.CategoryFacility, false, room),
		def("hasProjector", "Has Projector", models.DataTypeBoolean, models.CategoryFacility, false, room),
		def("floors", "Floors", models.DataTypeNumber, models.CategoryFacility, false, building),

		// Assessments and assignments
		def("dueDate", "Due Date", models.DataTypeDateTime, models.CategorySchedule, false, assessment, assignment),
		def("maxScore", "Max Score", models.DataTypeNumber, models.CategoryAcademic, false, assessment, assignment),
		def("weight", "Weight", models.DataTypeNumber, models.CategoryAcademic, false, assessment, assignment),
		def("assessmentType", "Assessment Type", models.DataTypeString, models.CategoryAcademic, false, assessment),
		def("instructions", "Instructions", models.DataTypeText, models.CategoryAcademic, false, assessment, assignment),
		def("allowLateSubmission", "Allow Late Submission", models.DataTypeBoolean, models.CategoryAcademic, false, assignment),

		// Events and announcements
		def("startDateTime", "Start", models.DataTypeDateTime, models.CategorySchedule, false, event),
		def("endDateTime", "End", models.DataTypeDateTime, models.CategorySchedule, false, event),
		def("location", "Location", models.DataTypeString, models.CategoryFacility, false, event),
		def("content", "Content", models.DataTypeText, models.CategoryGeneral, false, announcement),
		def("publishDate", "Publish Date", models.DataTypeDateTime, models.CategorySchedule, false, announcement),
		def("audience", "Audience", models.DataTypeString, models.CategoryGeneral, false, announcement, event),

		// System
		def("notes", "Notes", models.DataTypeText, models.CategorySystem, false,
			student, staff, parent, course, department, assessment, assignment, event, announcement, room, building),
		def("externalId", "External ID", models.DataTypeString, models.CategorySystem, false,
			student, staff, parent, course, department),
	}
}
