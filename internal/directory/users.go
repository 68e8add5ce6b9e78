package directory

import "github.com/avolkov/cert-registry-api/internal/models"

func ptr(id int) *int { return &id }

// Предопределённый штат: младшие подчиняются специалистам, специалисты —
// ведущим, ведущие — главному. HR стоит вне дерева.
var defaultUsers = []models.User{
	{ID: 1, FullName: "Алексеев Денис Романович", Role: models.RoleChief},

	{ID: 2, FullName: "Васильев Михаил Андреевич", Role: models.RoleLead, ManagerID: ptr(1)},
	{ID: 3, FullName: "Громова Ирина Валерьевна", Role: models.RoleLead, ManagerID: ptr(1)},

	{ID: 10, FullName: "Петров Александр Николаевич", Role: models.RoleSpecialist, ManagerID: ptr(2)},
	{ID: 11, FullName: "Николаева Ольга Владимировна", Role: models.RoleSpecialist, ManagerID: ptr(2)},
	{ID: 12, FullName: "Орлов Кирилл Евгеньевич", Role: models.RoleSpecialist, ManagerID: ptr(3)},
	{ID: 13, FullName: "Захарова Татьяна Сергеевна", Role: models.RoleSpecialist, ManagerID: ptr(3)},

	{ID: 20, FullName: "Иванов Иван Сергеевич", Role: models.RoleJunior, ManagerID: ptr(10)},
	{ID: 21, FullName: "Кузнецова Анна Дмитриевна", Role: models.RoleJunior, ManagerID: ptr(10)},
	{ID: 22, FullName: "Смирнов Артём Павлович", Role: models.RoleJunior, ManagerID: ptr(11)},
	{ID: 23, FullName: "Попова Екатерина Андреевна", Role: models.RoleJunior, ManagerID: ptr(11)},
	{ID: 24, FullName: "Волков Максим Олегович", Role: models.RoleJunior, ManagerID: ptr(12)},
	{ID: 25, FullName: "Морозова Мария Ильинична", Role: models.RoleJunior, ManagerID: ptr(12)},
	{ID: 26, FullName: "Фёдоров Даниил Викторович", Role: models.RoleJunior, ManagerID: ptr(13)},
	{ID: 27, FullName: "Соколова Полина Михайловна", Role: models.RoleJunior, ManagerID: ptr(13)},

	{ID: 100, FullName: "Беляева Наталья Константиновна", Role: models.RoleHR},
}
